package pipeline

import "sync"

// frameSlot is the single-slot hand-off between the capture loop and
// the send loop. Publishing overwrites an unsent payload instead of
// queuing behind it, so the send loop always transmits the freshest
// frame and a slow link can never build a backlog.
type frameSlot struct {
	mu      sync.Mutex
	cond    *sync.Cond
	payload []byte
	closed  bool
	drops   uint64
}

func newFrameSlot() *frameSlot {
	s := &frameSlot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// put publishes a payload without blocking. An unconsumed payload is
// overwritten and counted as a drop.
func (s *frameSlot) put(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.payload != nil {
		s.drops++
	}
	s.payload = p
	s.cond.Signal()
}

// take blocks until a payload is available or the slot is closed.
// The second return is false once the slot is closed and drained.
func (s *frameSlot) take() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.payload == nil && !s.closed {
		s.cond.Wait()
	}
	if s.payload == nil {
		return nil, false
	}
	p := s.payload
	s.payload = nil
	return p, true
}

// close wakes any blocked take. Safe to call more than once.
func (s *frameSlot) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *frameSlot) dropCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drops
}
