// ABOUTME: Audio output tests
// ABOUTME: Verifies Output implementations, backend selection and the ring buffer
package output

import (
	"testing"
)

func TestOtoImplementsOutput(t *testing.T) {
	var _ Output = (*Oto)(nil)
}

func TestMalgoImplementsOutput(t *testing.T) {
	var _ Output = (*Malgo)(nil)
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend  string
		wantName string
		wantErr  bool
	}{
		{"", "oto", false},
		{"oto", "oto", false},
		{"malgo", "malgo", false},
		{"pulse", "", true},
	}

	for _, tt := range tests {
		out, err := New(tt.backend)
		if tt.wantErr {
			if err == nil {
				t.Errorf("backend %q: expected error", tt.backend)
			}
			continue
		}
		if err != nil {
			t.Fatalf("backend %q: unexpected error: %v", tt.backend, err)
		}
		if out.Name() != tt.wantName {
			t.Errorf("backend %q: expected %s, got %s", tt.backend, tt.wantName, out.Name())
		}
	}
}

func TestWriteBeforeOpen(t *testing.T) {
	for _, out := range []Output{NewOto(), NewMalgo()} {
		if err := out.Write([]byte{0, 0}); err == nil {
			t.Errorf("%s: expected error writing to unopened output", out.Name())
		}
	}
}

func TestCloseWithoutOpen(t *testing.T) {
	for _, out := range []Output{NewOto(), NewMalgo()} {
		if err := out.Close(); err != nil {
			t.Errorf("%s: Close() without Open() returned %v", out.Name(), err)
		}
	}
}

func TestRingBuffer_WriteRead(t *testing.T) {
	rb := NewRingBuffer(4)

	if n := rb.Write([]int16{1, 2, 3, 4, 5, 6}); n != 4 {
		t.Fatalf("expected 4 samples written, got %d", n)
	}
	if rb.Free() != 0 {
		t.Errorf("expected full buffer, %d free", rb.Free())
	}

	out := make([]int16, 3)
	if n := rb.Read(out); n != 3 {
		t.Fatalf("expected 3 samples read, got %d", n)
	}
	if out[0] != 1 || out[1] != 2 || out[2] != 3 {
		t.Errorf("unexpected samples: %v", out)
	}

	// Wrap around
	rb.Write([]int16{7, 8})
	if rb.Available() != 3 {
		t.Errorf("expected 3 available, got %d", rb.Available())
	}

	out = make([]int16, 5)
	if n := rb.Read(out); n != 3 {
		t.Fatalf("expected 3 samples read, got %d", n)
	}
	expected := []int16{4, 7, 8, 0, 0}
	for i := range expected {
		if out[i] != expected[i] {
			t.Errorf("position %d: expected %d, got %d", i, expected[i], out[i])
		}
	}
}
