package logging

import (
	"fmt"
	"testing"
)

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := range 5 {
		rb.Write(LogEntry{Message: fmt.Sprintf("m%d", i)})
	}

	if rb.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", rb.Count())
	}

	all := rb.ReadAll()
	want := []string{"m2", "m3", "m4"}
	for i, e := range all {
		if e.Message != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Message, want[i])
		}
	}
	if all[0].Seq != 3 || all[2].Seq != 5 {
		t.Errorf("unexpected sequence numbers: %d..%d", all[0].Seq, all[2].Seq)
	}
}

func TestRingBufferTail(t *testing.T) {
	rb := NewRingBuffer(4)
	if rb.Tail(2) != nil {
		t.Fatal("empty buffer should return nil")
	}
	for i := range 3 {
		rb.Write(LogEntry{Message: fmt.Sprintf("m%d", i)})
	}

	tests := []struct {
		n    int
		want []string
	}{
		{1, []string{"m2"}},
		{2, []string{"m1", "m2"}},
		{10, []string{"m0", "m1", "m2"}},
		{0, []string{"m0", "m1", "m2"}},
	}
	for _, tt := range tests {
		got := rb.Tail(tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("Tail(%d) len = %d, want %d", tt.n, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].Message != tt.want[i] {
				t.Errorf("Tail(%d)[%d] = %q, want %q", tt.n, i, got[i].Message, tt.want[i])
			}
		}
	}
}
