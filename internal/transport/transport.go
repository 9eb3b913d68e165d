package transport

import "errors"

// MaxFrameSize bounds the length a frame header may claim. A JPEG frame
// at any supported quality is far smaller; a header above this means the
// stream is desynced or the peer is misbehaving, and the session ends
// rather than buffering unbounded garbage.
const MaxFrameSize = 64 << 20

var (
	// ErrPeerDisconnected reports a clean end of stream between frames.
	// This is the normal way a session ends, not a fault.
	ErrPeerDisconnected = errors.New("transport: peer disconnected")

	// ErrConnectionClosed reports a stream that ended in the middle of a
	// frame. The partial frame is discarded and the session is over.
	ErrConnectionClosed = errors.New("transport: connection closed mid-frame")

	// ErrFrameTooLarge reports a frame larger than MaxFrameSize.
	ErrFrameTooLarge = errors.New("transport: frame exceeds size limit")
)

// FrameWriter sends encoded video frames.
type FrameWriter interface {
	WriteFrame(payload []byte) error
}

// FrameReader receives encoded video frames.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}
