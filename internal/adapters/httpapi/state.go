package httpapi

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/pkg/metrics"
)

type state string

const (
	stateReceived   state = "Received"
	stateValidated  state = "Validated"
	stateDispatched state = "Dispatched"
	stateEncoded    state = "Encoded"
	stateResponded  state = "Responded"
	stateRejected   state = "Rejected"
	stateFailed     state = "Failed"
)

// Rejected is only reachable before validation completes, Failed only after dispatch.
var transitions = map[state][]state{
	stateReceived:   {stateValidated, stateRejected},
	stateValidated:  {stateDispatched},
	stateDispatched: {stateEncoded, stateFailed},
	stateEncoded:    {stateResponded},
}

func (s state) terminal() bool {
	return s == stateResponded || s == stateRejected || s == stateFailed
}

// requestState tracks one OCR request through its lifecycle.
type requestState struct {
	logger  zerolog.Logger
	current state
	start   time.Time
}

func newRequestState(logger zerolog.Logger) *requestState {
	s := &requestState{logger: logger, current: stateReceived, start: time.Now()}
	logger.Debug().Str("state", string(stateReceived)).Msg("ocr request state")
	return s
}

func (s *requestState) to(next state) {
	if !allowed(s.current, next) {
		s.logger.Error().Str("from", string(s.current)).Str("to", string(next)).Msg("illegal request state transition")
		return
	}
	s.logger.Debug().
		Str("from", string(s.current)).
		Str("state", string(next)).
		Dur("elapsed", time.Since(s.start)).
		Msg("ocr request state")
	s.current = next
	if next.terminal() {
		metrics.RequestsByState.WithLabelValues(string(next)).Inc()
	}
}

func allowed(from, to state) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
