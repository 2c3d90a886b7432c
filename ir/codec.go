package ir

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Module bytes header.
const (
	// Magic starts every encoded module ("HLIR" little-endian).
	Magic uint32 = 0x52494C48

	// CodecVersion is the encoding version written by Encode.
	CodecVersion uint32 = 1
)

// ErrTruncated is returned when encoded data ends early.
var ErrTruncated = errors.New("truncated module data")

// WordWriter builds a little-endian word stream.
type WordWriter struct {
	words []uint32
}

// NewWordWriter creates a new word writer.
func NewWordWriter() *WordWriter {
	return &WordWriter{words: make([]uint32, 0, 256)}
}

// Word appends one word.
func (w *WordWriter) Word(word uint32) {
	w.words = append(w.words, word)
}

// Uint64 appends a 64-bit value as two words, low word first.
func (w *WordWriter) Uint64(v uint64) {
	w.words = append(w.words, uint32(v), uint32(v>>32))
}

// String appends a NUL-terminated UTF-8 string padded to a word boundary.
func (w *WordWriter) String(s string) {
	bytes := append([]byte(s), 0)
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}
	for i := 0; i < len(bytes); i += 4 {
		w.words = append(w.words, binary.LittleEndian.Uint32(bytes[i:]))
	}
}

// Len returns the number of words written.
func (w *WordWriter) Len() int {
	return len(w.words)
}

// Bytes returns the encoded stream.
func (w *WordWriter) Bytes() []byte {
	out := make([]byte, len(w.words)*4)
	for i, word := range w.words {
		binary.LittleEndian.PutUint32(out[i*4:], word)
	}
	return out
}

// WordReader reads a stream written by WordWriter. The first error is
// sticky: later reads return zero values and Err reports it.
type WordReader struct {
	data []byte
	pos  int
	err  error
}

// NewWordReader creates a reader over data.
func NewWordReader(data []byte) *WordReader {
	r := &WordReader{data: data}
	if len(data)%4 != 0 {
		r.err = fmt.Errorf("%w: length %d is not a multiple of 4", ErrTruncated, len(data))
	}
	return r
}

// Word reads one word.
func (r *WordReader) Word() uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+4 > len(r.data) {
		r.err = fmt.Errorf("%w at offset 0x%X", ErrTruncated, r.pos)
		return 0
	}
	w := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return w
}

// Uint64 reads a value written by WordWriter.Uint64.
func (r *WordReader) Uint64() uint64 {
	lo := r.Word()
	hi := r.Word()
	return uint64(hi)<<32 | uint64(lo)
}

// Count reads a word used as an element count and checks it against the
// remaining data, so corrupt counts fail instead of allocating.
func (r *WordReader) Count() int {
	n := r.Word()
	if r.err == nil && int(n) > r.Remaining()/4 {
		r.err = fmt.Errorf("%w: count %d exceeds remaining data", ErrTruncated, n)
		return 0
	}
	return int(n)
}

// String reads a NUL-terminated, word-padded string.
func (r *WordReader) String() string {
	if r.err != nil {
		return ""
	}
	for end := r.pos; end < len(r.data); end++ {
		if r.data[end] == 0 {
			s := string(r.data[r.pos:end])
			r.pos = (end/4 + 1) * 4
			return s
		}
	}
	r.err = fmt.Errorf("%w: unterminated string at offset 0x%X", ErrTruncated, r.pos)
	return ""
}

// Remaining returns the number of unread bytes.
func (r *WordReader) Remaining() int {
	return len(r.data) - r.pos
}

// Err returns the first read error.
func (r *WordReader) Err() error {
	return r.err
}

// Encode serializes a module to module bytes.
func Encode(m *Module) []byte {
	w := NewWordWriter()
	w.Word(Magic)
	w.Word(CodecVersion)
	w.String(m.Target)

	w.Word(uint32(len(m.Meta)))
	for _, md := range m.Meta {
		w.String(md.Key)
		w.String(md.Value)
	}

	w.Word(uint32(len(m.Globals)))
	for _, g := range m.Globals {
		w.String(g.Name)
		w.Word(g.Type.Word())
	}

	w.Word(uint32(len(m.Functions)))
	for _, f := range m.Functions {
		encodeFunction(w, f)
	}
	return w.Bytes()
}

func encodeFunction(w *WordWriter, f *Function) {
	w.String(f.Name)
	w.Word(f.Return.Word())
	w.String(f.ReturnSemantic)
	w.Word(uint32(len(f.Params)))
	for _, p := range f.Params {
		w.String(p.Name)
		w.Word(p.Type.Word())
		w.String(p.Semantic)
	}
	w.Word(uint32(len(f.Blocks)))
	for _, b := range f.Blocks {
		w.String(b.Label)
		w.Word(uint32(len(b.Instrs)))
		for _, in := range b.Instrs {
			encodeInstr(w, in)
		}
	}
}

func encodeInstr(w *WordWriter, in *Instr) {
	w.Word(uint32(in.Op))
	w.String(in.Result)
	w.Word(in.Type.Word())
	w.Word(uint32(len(in.Args)))
	for _, a := range in.Args {
		encodeValue(w, a)
	}
	switch in.Op {
	case OpCall:
		w.String(in.Callee)
	case OpSwizzle:
		w.String(in.Mask)
	case OpPhi:
		w.Word(uint32(len(in.Incoming)))
		for _, inc := range in.Incoming {
			encodeValue(w, inc.Value)
			w.String(inc.Block)
		}
	case OpBr, OpCondBr:
		w.Word(uint32(len(in.Targets)))
		for _, t := range in.Targets {
			w.String(t)
		}
	}
}

func encodeValue(w *WordWriter, v Value) {
	w.Word(uint32(v.Kind))
	switch v.Kind {
	case ValueLocal, ValueGlobal:
		w.String(v.Name)
	case ValueConst:
		w.Word(v.Const.Type.Word())
		switch v.Const.Type.Kind {
		case TypeFloat:
			w.Uint64(math.Float64bits(v.Const.Float))
		case TypeInt:
			w.Uint64(uint64(v.Const.Int))
		case TypeBool:
			if v.Const.Bool {
				w.Word(1)
			} else {
				w.Word(0)
			}
		}
	}
}

// IsModule reports whether data starts with the module magic.
func IsModule(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == Magic
}

// Decode parses module bytes.
func Decode(data []byte) (*Module, error) {
	r := NewWordReader(data)
	if magic := r.Word(); r.Err() == nil && magic != Magic {
		return nil, fmt.Errorf("invalid module magic: 0x%08X", magic)
	}
	if version := r.Word(); r.Err() == nil && version != CodecVersion {
		return nil, fmt.Errorf("unsupported module version %d", version)
	}

	m := &Module{Target: r.String()}

	n := r.Count()
	for i := 0; i < n && r.Err() == nil; i++ {
		key := r.String()
		m.Meta = append(m.Meta, Metadata{Key: key, Value: r.String()})
	}

	n = r.Count()
	for i := 0; i < n && r.Err() == nil; i++ {
		name := r.String()
		m.Globals = append(m.Globals, Global{Name: name, Type: TypeFromWord(r.Word())})
	}

	n = r.Count()
	for i := 0; i < n && r.Err() == nil; i++ {
		m.Functions = append(m.Functions, decodeFunction(r))
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after module", r.Remaining())
	}
	return m, nil
}

func decodeFunction(r *WordReader) *Function {
	f := &Function{
		Name:           r.String(),
		Return:         TypeFromWord(r.Word()),
		ReturnSemantic: r.String(),
	}
	n := r.Count()
	for i := 0; i < n && r.Err() == nil; i++ {
		p := Param{Name: r.String(), Type: TypeFromWord(r.Word())}
		p.Semantic = r.String()
		f.Params = append(f.Params, p)
	}
	n = r.Count()
	for i := 0; i < n && r.Err() == nil; i++ {
		b := &Block{Label: r.String()}
		count := r.Count()
		for j := 0; j < count && r.Err() == nil; j++ {
			b.Instrs = append(b.Instrs, decodeInstr(r))
		}
		f.Blocks = append(f.Blocks, b)
	}
	return f
}

func decodeInstr(r *WordReader) *Instr {
	in := &Instr{Op: Op(r.Word())}
	in.Result = r.String()
	in.Type = TypeFromWord(r.Word())
	n := r.Count()
	for i := 0; i < n && r.Err() == nil; i++ {
		in.Args = append(in.Args, decodeValue(r))
	}
	switch in.Op {
	case OpCall:
		in.Callee = r.String()
	case OpSwizzle:
		in.Mask = r.String()
	case OpPhi:
		n := r.Count()
		for i := 0; i < n && r.Err() == nil; i++ {
			v := decodeValue(r)
			in.Incoming = append(in.Incoming, Incoming{Value: v, Block: r.String()})
		}
	case OpBr, OpCondBr:
		n := r.Count()
		for i := 0; i < n && r.Err() == nil; i++ {
			in.Targets = append(in.Targets, r.String())
		}
	}
	return in
}

func decodeValue(r *WordReader) Value {
	v := Value{Kind: ValueKind(r.Word())}
	switch v.Kind {
	case ValueLocal, ValueGlobal:
		v.Name = r.String()
	case ValueConst:
		v.Const.Type = TypeFromWord(r.Word())
		switch v.Const.Type.Kind {
		case TypeFloat:
			v.Const.Float = math.Float64frombits(r.Uint64())
		case TypeInt:
			v.Const.Int = int64(r.Uint64())
		case TypeBool:
			v.Const.Bool = r.Word() != 0
		}
	default:
		if r.err == nil {
			r.err = fmt.Errorf("invalid value kind %d", v.Kind)
		}
	}
	return v
}
