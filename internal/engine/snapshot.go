package engine

import "maps"

// presence tags a key's state inside a layer. A key missing from the
// layer's map is unset; the zero value is never stored.
type presence uint8

const (
	unset presence = iota
	tombstone
	concrete
)

type entry[V comparable] struct {
	state presence
	value V
}

// snapshot is one set of key/value state plus its value->count index.
// For the base store counts are absolute and never stored at zero; for a
// transaction layer they are deltas against the base and may be negative.
type snapshot[K comparable, V comparable] struct {
	values      map[K]entry[V]
	valueCounts map[V]int
}

func newSnapshot[K comparable, V comparable]() *snapshot[K, V] {
	return &snapshot[K, V]{
		values:      make(map[K]entry[V]),
		valueCounts: make(map[V]int),
	}
}

// clone copies both maps. Entries are values, so the copy shares nothing
// mutable with s.
func (s *snapshot[K, V]) clone() *snapshot[K, V] {
	return &snapshot[K, V]{
		values:      maps.Clone(s.values),
		valueCounts: maps.Clone(s.valueCounts),
	}
}

// lookup reports the key's presence in this snapshot alone.
func (s *snapshot[K, V]) lookup(key K) entry[V] {
	return s.values[key]
}
