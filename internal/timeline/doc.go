// Package timeline holds the deduplicated, ordered, time-sectioned set of
// events behind a chat transcript. It has no knowledge of rendering.
//
// An EventStore is not safe for concurrent use; drive it from the
// conversation's lane (see package dispatch).
package timeline
