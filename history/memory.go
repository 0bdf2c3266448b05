package history

import (
	"context"
	"slices"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
)

// MemStore is an in-process Store keyed by session id. Threads are
// independent; appends within one thread are serialized by its own lock.
type MemStore struct {
	threads *haxmap.Map[string, *thread]
}

type thread struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemStore() *MemStore {
	return &MemStore{
		threads: haxmap.New[string, *thread](),
	}
}

func (s *MemStore) Append(_ context.Context, msg Message) error {
	th, _ := s.threads.GetOrCompute(msg.SessionID.String(), func() *thread {
		return &thread{}
	})

	th.mu.Lock()
	th.messages = append(th.messages, msg)
	th.mu.Unlock()
	return nil
}

func (s *MemStore) Thread(_ context.Context, sessionID uuid.UUID) ([]Message, error) {
	th, ok := s.threads.Get(sessionID.String())
	if !ok {
		return nil, nil
	}

	th.mu.Lock()
	defer th.mu.Unlock()
	return slices.Clone(th.messages), nil
}
