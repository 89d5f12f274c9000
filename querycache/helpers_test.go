package querycache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/pkg/testsupport"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID    int64  `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Age   int    `json:"age,omitempty"`
}

// fakeQuery records every execution and the descriptor it received.
type fakeQuery struct {
	desc   cache.Descriptor
	result any
	err    error
	block  chan struct{}

	calls atomic.Int32
	mu    sync.Mutex
	seen  []cache.Descriptor
}

func (q *fakeQuery) Describe() cache.Descriptor { return q.desc.Clone() }

func (q *fakeQuery) Execute(ctx context.Context, d cache.Descriptor) (any, error) {
	q.calls.Add(1)
	q.mu.Lock()
	q.seen = append(q.seen, d)
	q.mu.Unlock()
	if q.block != nil {
		<-q.block
	}
	return q.result, q.err
}

func (q *fakeQuery) lastDescriptor() cache.Descriptor {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.seen[len(q.seen)-1]
}

func newTestStore(t *testing.T) cache.Store {
	t.Helper()
	store, err := cache.NewStore(cache.DefaultConfig())
	require.NoError(t, err)
	return store
}

func newTestCache(t *testing.T, opts ...Option) (*Cache, cache.Store) {
	t.Helper()
	store := newTestStore(t)
	registry := NewRegistry(NewModel[user]("users"))
	opts = append([]Option{WithWriteToggle(func() bool { return false })}, opts...)
	qc, err := New(store, registry, opts...)
	require.NoError(t, err)
	return qc, store
}

func loadUsers(t *testing.T) []Document {
	t.Helper()
	return testsupport.LoadDocuments(t, testsupport.FixturePath("users.json"))
}

func findUsers(result any) *fakeQuery {
	return &fakeQuery{
		desc:   cache.Descriptor{Model: "users", Op: cache.OpFind, Conditions: map[string]any{"active": true}},
		result: result,
	}
}
