package watchlist

import (
	"context"
	"sync"
)

// Memo caches whole following sets for the lifetime of one request.
// It is attached to a context with WithMemo and is safe for concurrent use.
type Memo struct {
	mu        sync.Mutex
	following map[uint]map[uint]struct{}
}

func NewMemo() *Memo {
	return &Memo{following: make(map[uint]map[uint]struct{})}
}

type memoKey struct{}

// WithMemo returns a child context carrying a fresh Memo
func WithMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, memoKey{}, NewMemo())
}

// MemoFrom returns the context's Memo, or nil
func MemoFrom(ctx context.Context) *Memo {
	m, _ := ctx.Value(memoKey{}).(*Memo)
	return m
}

func (m *Memo) lookup(follower uint) (map[uint]struct{}, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.following[follower]
	return set, ok
}

func (m *Memo) store(follower uint, set map[uint]struct{}) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.following[follower] = set
	m.mu.Unlock()
}

func (m *Memo) forget(follower uint) {
	if m == nil {
		return
	}
	m.mu.Lock()
	delete(m.following, follower)
	m.mu.Unlock()
}
