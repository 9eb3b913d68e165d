package pipeline

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dannychantszfong/screen-stream/internal/capture"
	"github.com/dannychantszfong/screen-stream/internal/encoder"
	"github.com/dannychantszfong/screen-stream/internal/logger"
	"github.com/dannychantszfong/screen-stream/internal/transport"
)

const (
	dialTimeout   = 10 * time.Second
	statsInterval = 10 * time.Second

	// Adaptive quality bounds and step sizes.
	minQuality      = 30
	qualityStepDown = 5
	qualityStepUp   = 2
)

// SenderStats is a snapshot of streaming counters.
type SenderStats struct {
	Captured uint64
	Sent     uint64
	Dropped  uint64
	Quality  int
}

// Sender drives capture -> encode -> transmit against one receiver.
// It makes a single connection attempt per Run; retry policy belongs
// to the operator, not the pipeline.
//
// While streaming, a capture goroutine paces itself with a ticker at
// the target interval and publishes encoded payloads into a
// single-slot mailbox; the send loop drains it. When the network is
// slower than capture, newer frames overwrite unsent ones.
type Sender struct {
	addr     string
	interval time.Duration
	adaptive bool
	quality  int

	src *capture.Source
	enc encoder.Encoder

	state      atomic.Int32
	captured   atomic.Uint64
	sent       atomic.Uint64
	sendCost   atomic.Int64 // last WriteFrame duration, nanoseconds
	curQuality atomic.Int32

	slot *frameSlot
}

// NewSender creates a sender pipeline targeting addr. quality is the
// ceiling; with adaptive enabled the effective quality floats between
// minQuality and that ceiling.
func NewSender(addr string, interval time.Duration, quality int, adaptive bool, src *capture.Source, enc encoder.Encoder) *Sender {
	s := &Sender{
		addr:     addr,
		interval: interval,
		adaptive: adaptive,
		quality:  quality,
		src:      src,
		enc:      enc,
		slot:     newFrameSlot(),
	}
	s.curQuality.Store(int32(quality))
	return s
}

// State reports the current lifecycle state.
func (s *Sender) State() State {
	return State(s.state.Load())
}

// Stats returns a snapshot of streaming counters.
func (s *Sender) Stats() SenderStats {
	return SenderStats{
		Captured: s.captured.Load(),
		Sent:     s.sent.Load(),
		Dropped:  s.slot.dropCount(),
		Quality:  int(s.curQuality.Load()),
	}
}

// Run connects to the receiver and streams until ctx is canceled or
// the peer goes away. Operator cancellation returns nil; a failed
// connection attempt or a lost peer returns the error.
func (s *Sender) Run(parent context.Context) error {
	s.state.Store(int32(StateConnecting))
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(parent, "tcp", s.addr)
	if err != nil {
		s.state.Store(int32(StateDisconnected))
		return fmt.Errorf("connect to %s: %w", s.addr, err)
	}
	ch := transport.NewFrameChannel(conn)
	s.state.Store(int32(StateStreaming))
	logger.Info("streaming to %s (interval %v, quality %d)", s.addr, s.interval, s.quality)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Unblock both loops on cancellation: closing the channel aborts a
	// blocked WriteFrame, closing the slot releases a blocked take.
	go func() {
		<-ctx.Done()
		s.slot.close()
		ch.Close()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.captureLoop(ctx)
	}()

	err = s.sendLoop(ch)
	cancel()
	wg.Wait()
	s.state.Store(int32(StateDisconnected))

	if parent.Err() != nil {
		logger.Info("sender stopped (%d frames sent)", s.sent.Load())
		return nil
	}
	if err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	return nil
}

// captureLoop grabs, encodes, and publishes one frame per tick. Missed
// ticks are simply dropped by the ticker, so an iteration that overruns
// the interval never causes catch-up bursts or negative sleeps.
func (s *Sender) captureLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		start := time.Now()
		frame, err := s.src.Capture()
		if err != nil {
			logger.Error("capture: %v", err)
			continue
		}
		payload, err := s.enc.Encode(frame.Image)
		if err != nil {
			logger.Error("encode %dx%d frame: %v", frame.Width, frame.Height, err)
			continue
		}
		s.captured.Add(1)
		s.slot.put(payload)

		if s.adaptive {
			s.adjustQuality(time.Since(start) + time.Duration(s.sendCost.Load()))
		}
	}
}

func (s *Sender) sendLoop(ch transport.FrameWriter) error {
	lastStats := time.Now()
	for {
		payload, ok := s.slot.take()
		if !ok {
			return nil
		}
		start := time.Now()
		if err := ch.WriteFrame(payload); err != nil {
			return err
		}
		s.sendCost.Store(int64(time.Since(start)))
		s.sent.Add(1)

		if time.Since(lastStats) >= statsInterval {
			lastStats = time.Now()
			st := s.Stats()
			logger.Info("stats: captured=%d sent=%d dropped=%d quality=%d",
				st.Captured, st.Sent, st.Dropped, st.Quality)
		}
	}
}

// adjustQuality steps the JPEG quality toward whatever the encoder and
// link can sustain at the target interval, within
// [minQuality, configured quality]. 20% hysteresis on both sides keeps
// it from oscillating.
func (s *Sender) adjustQuality(cost time.Duration) {
	q := int(s.curQuality.Load())
	switch {
	case cost > s.interval*12/10:
		q -= qualityStepDown
	case cost < s.interval*8/10:
		q += qualityStepUp
	default:
		return
	}
	if q < minQuality {
		q = minQuality
	}
	if q > s.quality {
		q = s.quality
	}
	if q != int(s.curQuality.Load()) {
		s.curQuality.Store(int32(q))
		s.enc.SetQuality(q)
		logger.Debug("quality adjusted to %d", q)
	}
}
