package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dannychantszfong/screen-stream/internal/decoder"
	"github.com/dannychantszfong/screen-stream/internal/display"
	"github.com/dannychantszfong/screen-stream/internal/logger"
	"github.com/dannychantszfong/screen-stream/internal/transport"
)

// Receiver accepts one sender at a time, decodes its stream, and hands
// frames to the renderer. After a sender goes away it returns to
// listening for the next one; only operator cancellation terminates it.
//
// Connection attempts made while a session is active sit in the kernel
// accept backlog: Accept is only called between sessions, so a single
// active client is structural, not policed.
type Receiver struct {
	addr string
	dec  decoder.Decoder
	rend display.Renderer

	state atomic.Int32

	mu     sync.Mutex
	ln     net.Listener
	active *transport.FrameChannel
}

// NewReceiver creates a receiver pipeline bound to addr once Listen or
// Run is called.
func NewReceiver(addr string, dec decoder.Decoder, rend display.Renderer) *Receiver {
	return &Receiver{
		addr: addr,
		dec:  dec,
		rend: rend,
	}
}

// State reports the current lifecycle state.
func (r *Receiver) State() State {
	return State(r.state.Load())
}

// Listen binds the listen socket. Calling it before Run lets the
// caller surface bind errors early and read the bound address when the
// configured port is 0.
func (r *Receiver) Listen() error {
	ln, err := net.Listen("tcp", r.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", r.addr, err)
	}
	r.mu.Lock()
	r.ln = ln
	r.mu.Unlock()
	r.state.Store(int32(StateListening))
	logger.Info("listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound listen address, or nil before Listen.
func (r *Receiver) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ln == nil {
		return nil
	}
	return r.ln.Addr()
}

// Run serves senders one at a time until ctx is canceled. It binds the
// socket itself if Listen was not called first.
func (r *Receiver) Run(ctx context.Context) error {
	r.mu.Lock()
	ln := r.ln
	r.mu.Unlock()
	if ln == nil {
		if err := r.Listen(); err != nil {
			r.state.Store(int32(StateTerminated))
			return err
		}
		r.mu.Lock()
		ln = r.ln
		r.mu.Unlock()
	}
	defer ln.Close()

	// Cancellation aborts a blocked Accept and any in-flight read.
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
		r.mu.Lock()
		active := r.active
		r.mu.Unlock()
		if active != nil {
			active.Close()
		}
	})
	defer stop()

	for {
		r.state.Store(int32(StateListening))
		conn, err := ln.Accept()
		if err != nil {
			r.state.Store(int32(StateTerminated))
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		r.serve(ctx, conn)
		if ctx.Err() != nil {
			r.state.Store(int32(StateTerminated))
			return nil
		}
	}
}

// serve runs one streaming session: read -> decode -> render until the
// sender goes away or ctx is canceled. A corrupt frame is dropped and
// the session continues.
func (r *Receiver) serve(ctx context.Context, conn net.Conn) {
	ch := transport.NewFrameChannel(conn)
	r.mu.Lock()
	r.active = ch
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active = nil
		r.mu.Unlock()
		ch.Close()
	}()

	r.state.Store(int32(StateStreaming))
	logger.Info("sender connected from %s", ch.RemoteAddr())

	var frames uint64
	for {
		payload, err := ch.ReadFrame()
		if err != nil {
			switch {
			case errors.Is(err, transport.ErrPeerDisconnected):
				logger.Info("sender disconnected (%d frames)", frames)
			case ctx.Err() != nil:
				// Shutdown closed the conn under us.
			case errors.Is(err, transport.ErrConnectionClosed):
				logger.Error("connection lost mid-frame after %d frames: %v", frames, err)
			default:
				logger.Error("read frame: %v", err)
			}
			return
		}
		img, err := r.dec.Decode(payload)
		if err != nil {
			// One bad frame must not end the session.
			logger.Debug("dropping corrupt frame: %v", err)
			continue
		}
		r.rend.Render(img)
		frames++
	}
}
