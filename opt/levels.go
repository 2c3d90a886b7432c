package opt

import (
	"fmt"
	"strings"

	"github.com/gogpu/shadeopt/passes"
)

// MaxLevel is the highest optimization level.
const MaxLevel = 3

type levelPipeline struct {
	function []string
	module   []string
}

var levels = [MaxLevel + 1]levelPipeline{
	0: {
		module: []string{"-hlsl-hlemit", passes.NoPause, "-hlsl-dxilgen", "-dxil-finalize"},
	},
	1: {
		function: []string{"-simplifycfg"},
		module:   []string{"-hlsl-hlemit", "-inline", "-globaldce", "-dce", "-hlsl-dxilgen", "-dxil-finalize"},
	},
	2: {
		function: []string{"-simplifycfg", "-instcombine", "-dce"},
		module: []string{
			"-hlsl-hlemit",
			"-inline", "-globaldce",
			"-instcombine", "-simplifycfg", "-dce",
			"-strip-dead-prototypes",
			"-hlsl-dxilgen",
			"-instcombine", "-dce",
			"-dxil-finalize",
		},
	},
	3: {
		function: []string{"-simplifycfg", "-instcombine", "-dce"},
		module: []string{
			"-hlsl-hlemit",
			"-inline", "-globaldce",
			"-instcombine", "-simplifycfg", "-dce",
			"-inline", "-globaldce",
			"-instcombine", "-simplifycfg", "-dce",
			"-strip-dead-prototypes",
			"-hlsl-dxilgen",
			"-instcombine", "-dce",
			"-dxil-finalize",
		},
	},
}

// PassDump returns the pass list for an optimization level in the text
// form accepted by passes.Parse.
func PassDump(level int) (string, error) {
	if level < 0 || level > MaxLevel {
		return "", fmt.Errorf("optimization level %d out of range [0, %d]", level, MaxLevel)
	}
	lp := levels[level]

	var sb strings.Builder
	sb.WriteString("#   Function passes\n")
	sb.WriteString(passes.FunctionPasses + "\n")
	for _, p := range lp.function {
		sb.WriteString(p + "\n")
	}
	sb.WriteString("#   Module passes\n")
	sb.WriteString(passes.ModulePasses + "\n")
	for _, p := range lp.module {
		sb.WriteString(p + "\n")
	}
	return sb.String(), nil
}

// LevelPasses returns the token list an optimization level runs.
func LevelPasses(level int) ([]string, error) {
	dump, err := PassDump(level)
	if err != nil {
		return nil, err
	}
	return passes.Parse(dump), nil
}
