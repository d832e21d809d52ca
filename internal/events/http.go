package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when the shape handler receives a request.
// The publishing context carries the request ID as well.
type HTTPStart struct {
	Request   *http.Request
	RequestID string
}

// HTTPFinish is emitted after the response was written. Bytes counts the
// body bytes sent.
type HTTPFinish struct {
	Request   *http.Request
	RequestID string
	Status    int
	Bytes     int
	Duration  time.Duration
}
