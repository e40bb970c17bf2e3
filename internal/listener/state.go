package listener

// State is the phase the listener is in.
type State int32

const (
	StateStarting State = iota
	StateStreaming
	StateProcessingChunk
	StateTimedOut
	StateFatalStreamEnded
	StateFatalError
	StateStopped
)

var stateNames = []string{
	StateStarting:         "starting",
	StateStreaming:        "streaming",
	StateProcessingChunk:  "processing_chunk",
	StateTimedOut:         "timed_out",
	StateFatalStreamEnded: "fatal_stream_ended",
	StateFatalError:       "fatal_error",
	StateStopped:          "stopped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the listener has stopped for good.
func (s State) Terminal() bool {
	return s == StateFatalStreamEnded || s == StateFatalError || s == StateStopped
}
