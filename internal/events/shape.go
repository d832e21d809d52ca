package events

import "time"

// ShapeStart is emitted before a shape is derived from a schema.
type ShapeStart struct {
	Schema string
}

// ShapeFinish is emitted after shape derivation. Types is the number of
// administrable types found; Err is set when derivation failed.
type ShapeFinish struct {
	Schema   string
	Types    int
	Err      error
	Duration time.Duration
}

// MergeFinish is emitted after rules were overlaid on a generated shape.
// Pruned counts resolver entries removed for not being allowed.
type MergeFinish struct {
	Types    int
	Pruned   int
	Duration time.Duration
}
