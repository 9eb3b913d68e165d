package pipeline

import (
	"context"
	"image"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dannychantszfong/screen-stream/internal/capture"
	"github.com/dannychantszfong/screen-stream/internal/encoder"
	"github.com/dannychantszfong/screen-stream/internal/transport"
)

func testSource(w, h, maxWidth int) *capture.Source {
	grab := func() (*image.RGBA, error) {
		return image.NewRGBA(image.Rect(0, 0, w, h)), nil
	}
	return capture.NewSource(grab, maxWidth, 80)
}

func newTestSender(addr string, interval time.Duration) *Sender {
	return NewSender(addr, interval, 80, false,
		testSource(320, 200, 1024), encoder.NewJPEGEncoder(80))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLatestFrameWinsOnSlowLink(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	// A deliberately slow receiver: one frame per 50ms.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		ch := transport.NewFrameChannel(conn)
		defer ch.Close()
		for {
			if _, err := ch.ReadFrame(); err != nil {
				return
			}
			time.Sleep(50 * time.Millisecond)
		}
	}()

	s := newTestSender(ln.Addr().String(), 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	wg.Wait()

	st := s.Stats()
	if st.Sent == 0 {
		t.Fatal("no frames sent")
	}
	if st.Sent >= st.Captured {
		t.Fatalf("sent %d >= captured %d; slow link should drop frames", st.Sent, st.Captured)
	}
	if st.Dropped == 0 {
		t.Fatal("no drops recorded despite slow link")
	}
}

func TestConnectFailureIsTerminal(t *testing.T) {
	// Grab a port that is guaranteed closed.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	s := newTestSender(addr, 10*time.Millisecond)
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded against a closed port")
	}
	if s.State() != StateDisconnected {
		t.Fatalf("state = %v, want disconnected", s.State())
	}
}

func TestPeerLossEndsRun(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		ch := transport.NewFrameChannel(conn)
		ch.ReadFrame()
		ch.Close()
	}()

	s := newTestSender(ln.Addr().String(), 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("Run returned nil after peer loss")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not notice the lost peer")
	}
	if s.State() != StateDisconnected {
		t.Fatalf("state = %v, want disconnected", s.State())
	}
}

func TestCancellationStopsStreamingPromptly(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		ch := transport.NewFrameChannel(conn)
		defer ch.Close()
		for {
			if _, err := ch.ReadFrame(); err != nil {
				return
			}
		}
	}()

	s := newTestSender(ln.Addr().String(), 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	waitFor(t, 2*time.Second, "streaming to start", func() bool {
		return s.Stats().Sent > 0
	})
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run after cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit promptly on cancellation")
	}
}

func TestAdaptiveQualitySteps(t *testing.T) {
	enc := encoder.NewJPEGEncoder(80)
	s := NewSender("unused:0", 10*time.Millisecond, 80, true, testSource(320, 200, 1024), enc)

	// Persistent overrun drives quality down to the floor.
	for i := 0; i < 20; i++ {
		s.adjustQuality(50 * time.Millisecond)
	}
	if got := s.Stats().Quality; got != minQuality {
		t.Fatalf("quality after sustained overrun = %d, want %d", got, minQuality)
	}
	if enc.Quality() != minQuality {
		t.Fatalf("encoder quality = %d, want %d", enc.Quality(), minQuality)
	}

	// Headroom brings it back up, but never above the configured ceiling.
	for i := 0; i < 50; i++ {
		s.adjustQuality(time.Millisecond)
	}
	if got := s.Stats().Quality; got != 80 {
		t.Fatalf("quality after sustained headroom = %d, want the 80 ceiling", got)
	}

	// Inside the hysteresis band nothing moves.
	s.adjustQuality(10 * time.Millisecond)
	if got := s.Stats().Quality; got != 80 {
		t.Fatalf("quality moved inside hysteresis band: %d", got)
	}
}
