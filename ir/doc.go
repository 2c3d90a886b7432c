// Package ir defines HLIR, the module representation moved between
// optimizer invocations.
//
// HLIR is a small SSA form:
//   - Module: target profile, metadata, globals and functions
//   - Function: typed parameters with semantics, and a list of blocks
//     (a function without blocks is a declaration)
//   - Block: a label and instructions, ending in exactly one terminator
//   - Instr: an operation over Values (locals, globals or constants)
//
// # Pipeline
//
// The typical pipeline is:
//
//	HLIR text → Module → passes → module bytes → container
//
// Modules are serialized with Encode/Decode, a little-endian word stream
// in the style of SPIR-V. Validate checks structural and SSA rules.
package ir
