package engine

// overlayStack holds the open transaction layers. Only the top layer is
// read or written; each layer is a full copy of the one beneath it, so a
// lookup never needs more than the top layer and the base.
type overlayStack[K comparable, V comparable] struct {
	base   *baseStore[K, V]
	layers []*snapshot[K, V]
}

func (o *overlayStack[K, V]) active() bool {
	return len(o.layers) > 0
}

func (o *overlayStack[K, V]) depth() int {
	return len(o.layers)
}

func (o *overlayStack[K, V]) top() *snapshot[K, V] {
	return o.layers[len(o.layers)-1]
}

func (o *overlayStack[K, V]) begin() {
	if !o.active() {
		o.layers = append(o.layers, newSnapshot[K, V]())
		return
	}
	o.layers = append(o.layers, o.top().clone())
}

func (o *overlayStack[K, V]) rollback() bool {
	if !o.active() {
		return false
	}
	n := len(o.layers) - 1
	o.layers[n] = nil
	o.layers = o.layers[:n]
	return true
}

// commit merges the top layer, which already carries every change made
// below it, and drops the whole stack.
func (o *overlayStack[K, V]) commit() bool {
	if !o.active() {
		return false
	}
	o.base.merge(o.top())
	clear(o.layers)
	o.layers = o.layers[:0]
	return true
}

func (o *overlayStack[K, V]) get(key K) (V, bool) {
	e := o.top().lookup(key)
	switch e.state {
	case tombstone:
		var zero V
		return zero, false
	case concrete:
		return e.value, true
	}
	return o.base.get(key)
}

func (o *overlayStack[K, V]) set(key K, value V) (V, bool) {
	layer := o.top()
	prev, ok := o.get(key)
	if ok {
		layer.valueCounts[prev]--
	}
	layer.values[key] = entry[V]{state: concrete, value: value}
	layer.valueCounts[value]++
	return prev, ok
}

// delete writes a tombstone only for keys that resolve to a value, so the
// merge never removes a key the layer has not seen.
func (o *overlayStack[K, V]) delete(key K) (V, bool) {
	prev, ok := o.get(key)
	if !ok {
		return prev, false
	}
	layer := o.top()
	layer.valueCounts[prev]--
	layer.values[key] = entry[V]{state: tombstone}
	return prev, true
}

func (o *overlayStack[K, V]) count(value V) int {
	return o.base.count(value) + o.top().valueCounts[value]
}
