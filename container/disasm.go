// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/shadeopt/ir"
	"github.com/gogpu/shadeopt/irtext"
)

// ErrUnknownFormat is returned when disassembling data that is neither a
// container nor module bytes.
var ErrUnknownFormat = errors.New("unrecognized program format")

// Disassemble renders a container or bare module bytes as text. A
// container gets a commented header listing its signatures, feature flags
// and module hash, followed by the module text.
func Disassemble(data []byte) (string, error) {
	switch {
	case ir.IsModule(data):
		m, err := ir.Decode(data)
		if err != nil {
			return "", err
		}
		return irtext.Print(m), nil
	case IsContainer(data):
		c, err := Parse(data)
		if err != nil {
			return "", err
		}
		return disassembleContainer(c)
	}
	return "", ErrUnknownFormat
}

func disassembleContainer(c *Container) (string, error) {
	in, err := c.InputSignature()
	if err != nil {
		return "", err
	}
	out, err := c.OutputSignature()
	if err != nil {
		return "", err
	}
	flags, err := c.Features()
	if err != nil {
		return "", err
	}
	m, err := c.Module()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(";\n")
	writeSignature(&sb, "Input signature", in)
	writeSignature(&sb, "Output signature", out)
	fmt.Fprintf(&sb, "; Shader flags: %s\n;\n", flags)
	if hash, ok := c.Part(PartHash); ok {
		fmt.Fprintf(&sb, "; shader hash: %s\n;\n", hex.EncodeToString(hash))
	}
	sb.WriteString(irtext.Print(m))
	return sb.String(), nil
}

func writeSignature(sb *strings.Builder, title string, elems []SignatureElement) {
	fmt.Fprintf(sb, "; %s:\n;\n", title)
	if len(elems) == 0 {
		sb.WriteString("; (empty)\n;\n")
		return
	}
	fmt.Fprintf(sb, "; %-20s %s\n", "Name", "Type")
	fmt.Fprintf(sb, "; %s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 9))
	for _, e := range elems {
		sem := e.Semantic
		if sem == "" {
			sem = "_"
		}
		fmt.Fprintf(sb, "; %-20s %s\n", sem, e.Type)
	}
	sb.WriteString(";\n")
}
