package core

// SocketHandle is the narrow collaborator contract SocketSink needs from a
// real socket implementation. Building an actual BSD-sockets wrapper is
// out of scope here; this interface only specifies what a SocketSink
// expects to be able to call on one.
type SocketHandle interface {
	Send(p []byte) (int, error)
	Flush() error
	Close() error
}

// SocketSink is a Sink that forwards writes to a SocketHandle. It never
// buffers anything itself, so Size is always 0 and Available is
// unbounded. A SocketSink constructed with shared=true must never close
// its handle, since some other owner is responsible for that socket's
// lifetime; an unshared one closes its handle when the sink is closed.
type SocketSink struct {
	handle SocketHandle
	shared bool
}

// NewSocketSink wraps handle. When shared is true, Close is a no-op on
// the underlying handle.
func NewSocketSink(handle SocketHandle, shared bool) *SocketSink {
	return &SocketSink{handle: handle, shared: shared}
}

func (s *SocketSink) WriteBytes(p []byte) {
	if len(p) == 0 {
		return
	}
	if _, err := s.handle.Send(p); err != nil {
		panic(err)
	}
}

func (s *SocketSink) Flush() {
	if err := s.handle.Flush(); err != nil {
		panic(err)
	}
}

func (s *SocketSink) Clear()            {}
func (s *SocketSink) Size() uint32      { return 0 }
func (s *SocketSink) Available() uint32 { return unbounded }
func (s *SocketSink) DataPtr() []byte   { return nil }

// Shared reports whether this sink's handle is owned elsewhere.
func (s *SocketSink) Shared() bool { return s.shared }

// Close closes the underlying handle unless it is shared.
func (s *SocketSink) Close() error {
	if s.shared {
		return nil
	}
	return s.handle.Close()
}
