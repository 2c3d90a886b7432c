// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package container assembles HLIR modules into program containers and
// reads them back.
//
// A container is a little-endian word stream:
//
//	magic "HLBC" | digest [16]byte | version | total size | part count | part offsets...
//	part: fourcc | size | data
//
// The digest is the first 16 bytes of the SHA-256 of everything after the
// header. Parts appear in the order ISG1, OSG1, SFI0, HLIR, HASH.
package container

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/shadeopt/ir"
)

// Container header constants.
const (
	// Magic starts every container ("HLBC" little-endian).
	Magic uint32 = 0x43424C48

	// Version is the container version written by Assemble.
	Version uint32 = 1

	// DigestSize is the length of the header and HASH digests.
	DigestSize = 16

	headerWords = 1 + DigestSize/4 + 3
)

// Part four-character codes.
const (
	PartInputSignature  = "ISG1"
	PartOutputSignature = "OSG1"
	PartFeatures        = "SFI0"
	PartModule          = "HLIR"
	PartHash            = "HASH"
)

var (
	// ErrNotContainer is returned for data without the container magic.
	ErrNotContainer = errors.New("not a program container")

	// ErrCorrupt is returned when sizes, offsets or digests do not match.
	ErrCorrupt = errors.New("corrupt program container")

	// ErrMissingPart is returned when a required part is absent.
	ErrMissingPart = errors.New("missing container part")
)

// Part is one section of a container.
type Part struct {
	FourCC string
	Data   []byte
}

// Container is a parsed program container.
type Container struct {
	Version uint32
	Digest  [DigestSize]byte
	Parts   []Part
}

// SignatureElement is one entry of an input or output signature.
type SignatureElement struct {
	Semantic string
	Type     ir.Type
}

// Assemble encodes m together with its signatures, feature flags and
// module digest.
func Assemble(m *ir.Module) ([]byte, error) {
	entry := m.Entry()
	if entry == nil {
		return nil, fmt.Errorf("assemble: module has no entry point")
	}
	if entry.IsDeclaration() {
		return nil, fmt.Errorf("assemble: entry point @%s has no body", entry.Name)
	}

	var in, out []SignatureElement
	for _, p := range entry.Params {
		in = append(in, SignatureElement{Semantic: p.Semantic, Type: p.Type})
	}
	if entry.Return != ir.Void {
		out = append(out, SignatureElement{Semantic: entry.ReturnSemantic, Type: entry.Return})
	}

	module := ir.Encode(m)
	hash := sha256.Sum256(module)

	features := ir.NewWordWriter()
	features.Uint64(uint64(ir.Features(m)))

	parts := []Part{
		{FourCC: PartInputSignature, Data: encodeSignature(in)},
		{FourCC: PartOutputSignature, Data: encodeSignature(out)},
		{FourCC: PartFeatures, Data: features.Bytes()},
		{FourCC: PartModule, Data: module},
		{FourCC: PartHash, Data: hash[:DigestSize]},
	}
	return Build(parts), nil
}

// Build lays out parts into container bytes and computes the header digest.
func Build(parts []Part) []byte {
	offset := (headerWords + len(parts)) * 4
	offsets := make([]uint32, len(parts))
	var body bytes.Buffer
	for i, p := range parts {
		offsets[i] = uint32(offset + body.Len())
		var hdr [8]byte
		copy(hdr[:4], p.FourCC)
		binary.LittleEndian.PutUint32(hdr[4:], uint32(len(p.Data)))
		body.Write(hdr[:])
		body.Write(p.Data)
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
	}

	digest := sha256.Sum256(body.Bytes())
	w := ir.NewWordWriter()
	w.Word(Magic)
	for i := 0; i < DigestSize; i += 4 {
		w.Word(binary.LittleEndian.Uint32(digest[i:]))
	}
	w.Word(Version)
	w.Word(uint32(offset + body.Len()))
	w.Word(uint32(len(parts)))
	for _, o := range offsets {
		w.Word(o)
	}
	return append(w.Bytes(), body.Bytes()...)
}

// IsContainer reports whether data starts with the container magic.
func IsContainer(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == Magic
}

// Parse reads container bytes, checking the header digest and part layout.
func Parse(data []byte) (*Container, error) {
	if !IsContainer(data) {
		return nil, ErrNotContainer
	}
	if len(data) < headerWords*4 {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(data))
	}

	c := &Container{}
	copy(c.Digest[:], data[4:4+DigestSize])
	r := ir.NewWordReader(data[4+DigestSize:])
	c.Version = r.Word()
	size := r.Word()
	count := r.Count()
	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i] = r.Word()
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if c.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, c.Version)
	}
	if int(size) != len(data) {
		return nil, fmt.Errorf("%w: header size %d, have %d bytes", ErrCorrupt, size, len(data))
	}

	bodyStart := (headerWords + count) * 4
	digest := sha256.Sum256(data[bodyStart:])
	if !bytes.Equal(digest[:DigestSize], c.Digest[:]) {
		return nil, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
	}

	for i, off := range offsets {
		if int(off) < bodyStart || int(off)+8 > len(data) {
			return nil, fmt.Errorf("%w: part %d offset 0x%X out of range", ErrCorrupt, i, off)
		}
		n := binary.LittleEndian.Uint32(data[off+4:])
		end := int(off) + 8 + int(n)
		if end > len(data) {
			return nil, fmt.Errorf("%w: part %d size %d out of range", ErrCorrupt, i, n)
		}
		c.Parts = append(c.Parts, Part{
			FourCC: string(data[off : off+4]),
			Data:   data[off+8 : end],
		})
	}
	return c, nil
}

// Part returns the first part with the given four-character code.
func (c *Container) Part(fourcc string) ([]byte, bool) {
	for _, p := range c.Parts {
		if p.FourCC == fourcc {
			return p.Data, true
		}
	}
	return nil, false
}

// Module decodes the HLIR part.
func (c *Container) Module() (*ir.Module, error) {
	data, ok := c.Part(PartModule)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrMissingPart, PartModule)
	}
	return ir.Decode(data)
}

// InputSignature decodes the ISG1 part.
func (c *Container) InputSignature() ([]SignatureElement, error) {
	return c.signature(PartInputSignature)
}

// OutputSignature decodes the OSG1 part.
func (c *Container) OutputSignature() ([]SignatureElement, error) {
	return c.signature(PartOutputSignature)
}

// Features decodes the SFI0 part.
func (c *Container) Features() (ir.FeatureFlags, error) {
	data, ok := c.Part(PartFeatures)
	if !ok {
		return 0, fmt.Errorf("%w %s", ErrMissingPart, PartFeatures)
	}
	r := ir.NewWordReader(data)
	flags := r.Uint64()
	return ir.FeatureFlags(flags), r.Err()
}

func (c *Container) signature(fourcc string) ([]SignatureElement, error) {
	data, ok := c.Part(fourcc)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrMissingPart, fourcc)
	}
	r := ir.NewWordReader(data)
	n := r.Count()
	elems := make([]SignatureElement, 0, n)
	for range n {
		sem := r.String()
		t := ir.TypeFromWord(r.Word())
		elems = append(elems, SignatureElement{Semantic: sem, Type: t})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", fourcc, err)
	}
	return elems, nil
}

func encodeSignature(elems []SignatureElement) []byte {
	w := ir.NewWordWriter()
	w.Word(uint32(len(elems)))
	for _, e := range elems {
		w.String(e.Semantic)
		w.Word(e.Type.Word())
	}
	return w.Bytes()
}
