package profiles

import "time"

// Event is an entry of a user's timeline.
type Event struct {
	// @RemoteResource
	Title string
	At    time.Time
	Extra any
	Tags  map[string]any
	Next  *Event
}

// Box holds a labelled value.
type Box[T any] struct {
	// @RemoteResource
	Label string
	Value T
}
