package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

const headerSize = 4

var (
	_ FrameWriter = (*FrameChannel)(nil)
	_ FrameReader = (*FrameChannel)(nil)
)

// FrameChannel wraps a single net.Conn with the frame wire protocol:
// a 4-byte big-endian unsigned length followed by exactly that many
// payload bytes. The channel owns the conn for its lifetime; nothing
// else may read or write the underlying stream.
type FrameChannel struct {
	conn net.Conn

	writeMu  sync.Mutex
	writeBuf []byte

	header [headerSize]byte

	closeOnce sync.Once
	closeErr  error
}

// NewFrameChannel takes ownership of conn. TCP connections get latency
// and throughput tuning applied.
func NewFrameChannel(conn net.Conn) *FrameChannel {
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
		tc.SetWriteBuffer(1 << 20)
		tc.SetReadBuffer(1 << 20)
	}
	return &FrameChannel{conn: conn}
}

// WriteFrame sends one payload as a single length-prefixed message.
// Header and payload go out in one conn.Write so the kernel never sees
// a bare header; net.Conn retries short writes internally, so a
// returned nil means every byte was flushed.
func (c *FrameChannel) WriteFrame(payload []byte) error {
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	need := headerSize + len(payload)
	if cap(c.writeBuf) < need {
		c.writeBuf = make([]byte, need)
	}
	buf := c.writeBuf[:need]
	binary.BigEndian.PutUint32(buf[:headerSize], uint32(len(payload)))
	copy(buf[headerSize:], payload)

	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame blocks until exactly one full message has arrived and
// returns its payload. The stream may deliver arbitrarily small chunks;
// ReadFrame accumulates until the header and then the payload are
// complete. A clean close before the next header yields
// ErrPeerDisconnected; a close partway through a frame yields
// ErrConnectionClosed.
func (c *FrameChannel) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(c.conn, c.header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrPeerDisconnected
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrConnectionClosed
		}
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	length := binary.BigEndian.Uint32(c.header[:])
	if length > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrConnectionClosed
		}
		return nil, fmt.Errorf("read frame payload: %w", err)
	}
	return payload, nil
}

// Close shuts down the underlying conn, aborting any blocked read or
// write. Safe to call from any goroutine, any number of times.
func (c *FrameChannel) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// RemoteAddr returns the peer's address for logging.
func (c *FrameChannel) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
