package core

import (
	"bytes"
	"os"
	"testing"
)

func TestFixedArraySink_WriteAndOverflow(t *testing.T) {
	s := NewFixedArraySink(8)
	s.WriteBytes([]byte("abcd"))
	if s.Size() != 4 || s.Available() != 4 {
		t.Fatalf("Size=%d Available=%d after 4-byte write, want 4 and 4", s.Size(), s.Available())
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected overflowing write to panic")
		}
	}()
	s.WriteBytes([]byte("too many bytes"))
}

func TestFixedArraySink_ClearResetsWithoutReallocating(t *testing.T) {
	s := NewFixedArraySink(4)
	s.WriteBytes([]byte("ab"))
	s.Clear()
	if s.Size() != 0 {
		t.Fatalf("Size = %d after Clear, want 0", s.Size())
	}
	s.WriteBytes([]byte("cdef"))
	if !bytes.Equal(s.DataPtr(), []byte("cdef")) {
		t.Fatalf("DataPtr = %q, want %q", s.DataPtr(), "cdef")
	}
}

func TestViewSink_BoundsEnforced(t *testing.T) {
	buf := make([]byte, 4)
	s := NewViewSink(buf)
	s.WriteBytes([]byte("ab"))
	if s.Available() != 2 {
		t.Fatalf("Available = %d, want 2", s.Available())
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a write past the view's capacity to panic")
		}
	}()
	s.WriteBytes([]byte("cdef"))
}

func TestGrowingSink_GrowsToNextQuantum(t *testing.T) {
	s := NewGrowingSink()
	s.WriteBytes(make([]byte, 513))
	if got := s.Capacity(); got != 1024 {
		t.Fatalf("Capacity = %d after writing 513 bytes, want 1024", got)
	}
	if s.Size() != 513 {
		t.Fatalf("Size = %d, want 513", s.Size())
	}
}

func TestGrowingSink_ExactQuantumDoesNotOvergrow(t *testing.T) {
	s := NewGrowingSink()
	s.WriteBytes(make([]byte, 512))
	if got := s.Capacity(); got != 512 {
		t.Fatalf("Capacity = %d after writing exactly 512 bytes, want 512", got)
	}
}

func TestGrowingSink_ClearKeepsCapacityForReuse(t *testing.T) {
	s := NewGrowingSink()
	s.WriteBytes(make([]byte, 600))
	capBefore := s.Capacity()
	s.Clear()
	if s.Size() != 0 {
		t.Fatalf("Size = %d after Clear, want 0", s.Size())
	}
	if s.Capacity() != capBefore {
		t.Fatalf("Capacity changed across Clear: %d -> %d", capBefore, s.Capacity())
	}
}

func TestGrowingSink_PreservesPriorDataOnGrowth(t *testing.T) {
	s := NewGrowingSinkWithCapacity(8)
	s.WriteBytes([]byte("abcd"))
	s.WriteBytes(make([]byte, 600))
	if !bytes.Equal(s.DataPtr()[:4], []byte("abcd")) {
		t.Fatalf("data written before growth was lost: %q", s.DataPtr()[:4])
	}
}

func TestFileSink_ClearTruncates(t *testing.T) {
	path := t.TempDir() + "/sink.bin"
	s, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer s.Close()

	s.WriteBytes([]byte("hello world"))
	if s.Size() != 11 {
		t.Fatalf("Size = %d, want 11", s.Size())
	}

	s.Clear()
	if s.Size() != 0 {
		t.Fatalf("Size = %d after Clear, want 0", s.Size())
	}
	s.WriteBytes([]byte("hi"))
	if s.Size() != 2 {
		t.Fatalf("Size = %d after writing post-Clear, want 2", s.Size())
	}
}

func TestFileSink_ClearTruncatesEvenWhenOpenedForAppend(t *testing.T) {
	path := t.TempDir() + "/sink.bin"
	s, err := NewFileSinkMode(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("NewFileSinkMode: %v", err)
	}
	defer s.Close()

	s.WriteBytes([]byte("hello world"))
	if s.Size() != 11 {
		t.Fatalf("Size = %d, want 11", s.Size())
	}

	s.Clear()
	if s.Size() != 0 {
		t.Fatalf("Size = %d after Clear, want 0 (append-mode sink should still truncate)", s.Size())
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(contents) != 0 {
		t.Fatalf("file on disk still has %d bytes after Clear, want 0", len(contents))
	}
}

type fakeSocketHandle struct {
	sent   [][]byte
	closed bool
}

func (h *fakeSocketHandle) Send(p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	h.sent = append(h.sent, cp)
	return len(p), nil
}
func (h *fakeSocketHandle) Flush() error { return nil }
func (h *fakeSocketHandle) Close() error { h.closed = true; return nil }

func TestSocketSink_SharedHandleIsNeverClosed(t *testing.T) {
	handle := &fakeSocketHandle{}
	s := NewSocketSink(handle, true)
	s.WriteBytes([]byte("ping"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close err = %v", err)
	}
	if handle.closed {
		t.Fatalf("shared socket handle was closed")
	}
	if len(handle.sent) != 1 || !bytes.Equal(handle.sent[0], []byte("ping")) {
		t.Fatalf("handle.sent = %v, want one write of %q", handle.sent, "ping")
	}
}

func TestSocketSink_UnsharedHandleIsClosed(t *testing.T) {
	handle := &fakeSocketHandle{}
	s := NewSocketSink(handle, false)
	if err := s.Close(); err != nil {
		t.Fatalf("Close err = %v", err)
	}
	if !handle.closed {
		t.Fatalf("unshared socket handle was not closed")
	}
}
