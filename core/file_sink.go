package core

import (
	"io"
	"os"
)

// FileSink is a Sink that writes through to an *os.File. Clear reopens
// the file truncated rather than seeking, matching how a fresh write pass
// over the same path is expected to start from an empty file.
//
// OS-level write/seek/sync failures are not part of the Sink contract's
// return values, so they are reported the idiomatic Go way for a
// boundary like this: by panicking, rather than silently discarded.
type FileSink struct {
	file *os.File
	path string
	flag int
	perm os.FileMode
}

// NewFileSink opens path for writing, creating it and truncating any
// existing contents.
func NewFileSink(path string) (*FileSink, error) {
	return NewFileSinkMode(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

// NewFileSinkMode opens path with the given flag and permission bits.
func NewFileSinkMode(path string, flag int, perm os.FileMode) (*FileSink, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return &FileSink{file: f, path: path, flag: flag, perm: perm}, nil
}

func (s *FileSink) WriteBytes(p []byte) {
	if len(p) == 0 {
		return
	}
	if _, err := s.file.Write(p); err != nil {
		panic(err)
	}
}

// Flush forwards buffered writes to disk via fsync.
func (s *FileSink) Flush() {
	if err := s.file.Sync(); err != nil {
		panic(err)
	}
}

// Clear closes and reopens the file truncated, discarding its contents,
// regardless of the flags the sink was originally opened with.
func (s *FileSink) Clear() {
	if err := s.file.Close(); err != nil {
		panic(err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, s.perm)
	if err != nil {
		panic(err)
	}
	s.file = f
}

// Size returns the file's current write offset.
func (s *FileSink) Size() uint32 {
	off, err := s.file.Seek(0, io.SeekCurrent)
	if err != nil {
		panic(err)
	}
	return uint32(off)
}

func (s *FileSink) Available() uint32 { return unbounded }
func (s *FileSink) DataPtr() []byte   { return nil }

// Close releases the underlying file descriptor.
func (s *FileSink) Close() error {
	return s.file.Close()
}
