package engine

// baseStore is the authoritative map outside of any transaction.
// valueCounts[v] always equals the number of keys holding v, and
// entries reaching 0 are removed.
type baseStore[K comparable, V comparable] struct {
	snap *snapshot[K, V]
}

func newBaseStore[K comparable, V comparable]() *baseStore[K, V] {
	return &baseStore[K, V]{snap: newSnapshot[K, V]()}
}

func (b *baseStore[K, V]) get(key K) (V, bool) {
	e := b.snap.lookup(key)
	if e.state != concrete {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (b *baseStore[K, V]) set(key K, value V) (V, bool) {
	prev, ok := b.get(key)
	if ok {
		b.decrement(prev)
	}
	b.snap.values[key] = entry[V]{state: concrete, value: value}
	b.snap.valueCounts[value]++
	return prev, ok
}

func (b *baseStore[K, V]) delete(key K) (V, bool) {
	prev, ok := b.get(key)
	if !ok {
		return prev, false
	}
	delete(b.snap.values, key)
	b.decrement(prev)
	return prev, true
}

func (b *baseStore[K, V]) count(value V) int {
	return b.snap.valueCounts[value]
}

func (b *baseStore[K, V]) decrement(value V) {
	if n := b.snap.valueCounts[value] - 1; n > 0 {
		b.snap.valueCounts[value] = n
	} else {
		delete(b.snap.valueCounts, value)
	}
}

// merge folds a transaction layer into the base. Tombstones remove keys,
// concrete entries overwrite them, and every count delta is applied with
// non-positive results pruned.
func (b *baseStore[K, V]) merge(layer *snapshot[K, V]) {
	for key, e := range layer.values {
		switch e.state {
		case tombstone:
			delete(b.snap.values, key)
		case concrete:
			b.snap.values[key] = e
		}
	}
	for value, delta := range layer.valueCounts {
		if final := b.snap.valueCounts[value] + delta; final > 0 {
			b.snap.valueCounts[value] = final
		} else {
			delete(b.snap.valueCounts, value)
		}
	}
}

func (b *baseStore[K, V]) len() int {
	return len(b.snap.values)
}
