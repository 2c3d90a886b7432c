package ir

import "strings"

// FeatureFlags summarizes what a module uses.
type FeatureFlags uint32

const (
	FeatureSampling FeatureFlags = 1 << iota
	FeatureControlFlow
	FeatureCalls
)

var featureNames = []struct {
	flag FeatureFlags
	name string
}{
	{FeatureSampling, "Sampling"},
	{FeatureControlFlow, "ControlFlow"},
	{FeatureCalls, "Calls"},
}

// String lists the set flags separated by '|', or "None".
func (f FeatureFlags) String() string {
	var parts []string
	for _, fn := range featureNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// Features scans the defined functions of m.
func Features(m *Module) FeatureFlags {
	var flags FeatureFlags
	for _, f := range m.Functions {
		if len(f.Blocks) > 1 {
			flags |= FeatureControlFlow
		}
		for _, b := range f.Blocks {
			for _, in := range b.Instrs {
				switch {
				case in.Op.IsSample():
					flags |= FeatureSampling
				case in.Op == OpCall:
					flags |= FeatureCalls
				}
			}
		}
	}
	return flags
}
