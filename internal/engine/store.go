package engine

import "log/slog"

// Database is the contract consumed by the command dispatcher. Reads and
// writes apply to the innermost open transaction, or to the base store
// when none is open. The bool results report presence, so a zero value
// such as "" is a real stored value.
type Database[K comparable, V comparable] interface {
	Get(key K) (V, bool)
	Set(key K, value V) (V, bool)
	Delete(key K) (V, bool)
	Count(value V) int
	BeginTransaction()
	RollbackTransaction() bool
	CommitTransactions() bool
}

// Store is an in-memory key/value map with a value->count index and
// nested transactions. Rollback discards the innermost transaction only;
// commit finalizes every open transaction at once.
//
// A Store is not safe for concurrent use. Share it through a StoreManager.
type Store[K comparable, V comparable] struct {
	base   *baseStore[K, V]
	stack  overlayStack[K, V]
	logger *slog.Logger
}

var _ Database[string, string] = (*Store[string, string])(nil)

// New returns an empty store with no open transaction.
func New[K comparable, V comparable](opts ...Option) *Store[K, V] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	base := newBaseStore[K, V]()
	return &Store[K, V]{
		base:   base,
		stack:  overlayStack[K, V]{base: base},
		logger: cfg.logger,
	}
}

// Get returns the value visible for key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	if s.stack.active() {
		return s.stack.get(key)
	}
	return s.base.get(key)
}

// Set stores value under key and returns the value it replaced, if any.
func (s *Store[K, V]) Set(key K, value V) (V, bool) {
	if s.stack.active() {
		return s.stack.set(key, value)
	}
	return s.base.set(key, value)
}

// Delete removes key and returns its previous value. Deleting an absent
// key changes nothing.
func (s *Store[K, V]) Delete(key K) (V, bool) {
	if s.stack.active() {
		return s.stack.delete(key)
	}
	return s.base.delete(key)
}

// Count returns how many keys currently hold value.
func (s *Store[K, V]) Count(value V) int {
	if s.stack.active() {
		return s.stack.count(value)
	}
	return s.base.count(value)
}

// BeginTransaction opens a transaction nested inside the current one.
// Its cost is proportional to the changes held by the current transaction.
func (s *Store[K, V]) BeginTransaction() {
	s.stack.begin()
	s.logger.Debug("transaction started", "depth", s.stack.depth())
}

// RollbackTransaction discards the innermost transaction. It returns false
// when no transaction is open.
func (s *Store[K, V]) RollbackTransaction() bool {
	if !s.stack.rollback() {
		return false
	}
	s.logger.Debug("transaction rolled back", "depth", s.stack.depth())
	return true
}

// CommitTransactions applies the state of the innermost transaction, which
// includes every enclosing one, to the base store and closes them all. It
// returns false when no transaction is open.
func (s *Store[K, V]) CommitTransactions() bool {
	depth := s.stack.depth()
	if !s.stack.commit() {
		return false
	}
	s.logger.Debug("transactions committed", "depth", depth, "keys", s.base.len())
	return true
}

// Depth returns the number of open transactions.
func (s *Store[K, V]) Depth() int {
	return s.stack.depth()
}

// InTransaction reports whether a transaction is open.
func (s *Store[K, V]) InTransaction() bool {
	return s.stack.active()
}
