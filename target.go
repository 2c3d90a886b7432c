// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shadeopt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProfile is returned for malformed or unsupported target
// profiles.
var ErrInvalidProfile = errors.New("invalid target profile")

// ShaderModel represents a DirectX Shader Model version.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel5_0 is the base SM5 version (DirectX 11).
	ShaderModel5_0 ShaderModel = iota

	// ShaderModel5_1 provides improved resource binding.
	ShaderModel5_1

	// ShaderModel6_0 introduces DXIL. It is the lowest model the optimizer
	// accepts.
	ShaderModel6_0
	ShaderModel6_1
	ShaderModel6_2
	ShaderModel6_3
	ShaderModel6_4
	ShaderModel6_5
	ShaderModel6_6
	ShaderModel6_7
)

// String returns a human-readable representation of the shader model.
// Example: "SM 6.0"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "6_0"
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

func (sm ShaderModel) version() (major, minor uint8) {
	if sm <= ShaderModel5_1 {
		return 5, uint8(sm)
	}
	return 6, uint8(sm - ShaderModel6_0)
}

// SupportsDXIL returns true if this shader model uses DXIL output.
func (sm ShaderModel) SupportsDXIL() bool {
	return sm >= ShaderModel6_0
}

// Stage is a shader pipeline stage.
type Stage uint8

const (
	StagePixel Stage = iota
	StageVertex
	StageGeometry
	StageHull
	StageDomain
	StageCompute
	StageLibrary
)

var stagePrefixes = [...]string{
	StagePixel:    "ps",
	StageVertex:   "vs",
	StageGeometry: "gs",
	StageHull:     "hs",
	StageDomain:   "ds",
	StageCompute:  "cs",
	StageLibrary:  "lib",
}

// String returns the profile prefix of the stage, e.g. "ps".
func (s Stage) String() string {
	if int(s) < len(stagePrefixes) {
		return stagePrefixes[s]
	}
	return "stage?"
}

// Profile is a compilation target such as ps_6_0.
type Profile struct {
	Stage Stage
	Model ShaderModel
}

// String returns the profile in "<stage>_<major>_<minor>" form.
func (p Profile) String() string {
	return p.Stage.String() + "_" + p.Model.ProfileSuffix()
}

// ParseProfile parses a target profile such as "ps_6_0" or "lib_6_3".
func ParseProfile(s string) (Profile, error) {
	prefix, suffix, ok := strings.Cut(s, "_")
	if !ok {
		return Profile{}, fmt.Errorf("%w %q", ErrInvalidProfile, s)
	}
	var p Profile
	found := false
	for st, name := range stagePrefixes {
		if prefix == name {
			p.Stage, found = Stage(st), true
			break
		}
	}
	if !found {
		return Profile{}, fmt.Errorf("%w %q: unknown stage %q", ErrInvalidProfile, s, prefix)
	}
	for sm := ShaderModel5_0; sm <= ShaderModel6_7; sm++ {
		if sm.ProfileSuffix() == suffix {
			p.Model = sm
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w %q: unknown shader model %q", ErrInvalidProfile, s, suffix)
}
