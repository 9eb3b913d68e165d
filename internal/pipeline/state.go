package pipeline

// State identifies where a pipeline is in its lifecycle. Sender moves
// Disconnected -> Connecting -> Streaming -> Disconnected; Receiver
// cycles Listening <-> Streaming until it reaches Terminated.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateStreaming
	StateListening
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateListening:
		return "listening"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
