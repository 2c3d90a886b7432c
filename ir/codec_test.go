package ir

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestEncodeDecode(t *testing.T) {
	m := sampleModule()
	m.Functions[1].Blocks[0].Instrs = append([]*Instr{
		{Result: "k", Op: OpIAdd, Type: Int, Args: []Value{ConstInt(Int, -7), ConstInt(Int, 1 << 40)}},
		{Result: "c", Op: OpAnd, Type: Bool, Args: []Value{Local("b"), ConstBool(Bool, true)}},
		{Op: OpCall, Type: Void, Callee: "helper"},
	}, m.Functions[1].Blocks[0].Instrs...)

	data := Encode(m)
	if !IsModule(data) {
		t.Fatal("encoded data does not start with module magic")
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(m, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a := Encode(sampleModule())
	b := Encode(sampleModule())
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("encodings differ:\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	data := Encode(sampleModule())

	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{0, 4, 8, len(data) / 2, len(data) - 4} {
			if _, err := Decode(data[:n]); !errors.Is(err, ErrTruncated) {
				t.Errorf("Decode(data[:%d]) err = %v, want ErrTruncated", n, err)
			}
		}
	})

	t.Run("unaligned", func(t *testing.T) {
		if _, err := Decode(data[:len(data)-1]); !errors.Is(err, ErrTruncated) {
			t.Errorf("err = %v, want ErrTruncated", err)
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] ^= 0xFF
		if _, err := Decode(bad); err == nil {
			t.Error("Decode accepted bad magic")
		}
	})

	t.Run("trailing bytes", func(t *testing.T) {
		extra := append(append([]byte(nil), data...), 0, 0, 0, 0)
		if _, err := Decode(extra); err == nil {
			t.Error("Decode accepted trailing bytes")
		}
	})
}

func TestWordWriterString(t *testing.T) {
	w := NewWordWriter()
	w.String("abc")
	w.String("abcd")
	w.String("")
	if w.Len() != 1+2+1 {
		t.Errorf("Len = %d, want 4", w.Len())
	}

	r := NewWordReader(w.Bytes())
	for _, want := range []string{"abc", "abcd", ""} {
		if got := r.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
	if r.Err() != nil || r.Remaining() != 0 {
		t.Errorf("Err = %v, Remaining = %d", r.Err(), r.Remaining())
	}
}
