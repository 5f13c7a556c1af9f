package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

// Store keeps the current corpus. Readers always see a whole corpus, and the
// last writer wins.
type Store struct {
	mu      sync.RWMutex
	current domain.Corpus
	set     bool
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Replace(_ context.Context, corpus domain.Corpus) error {
	if corpus.ID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "replace corpus", fmt.Errorf("corpus id is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = corpus
	s.set = true
	return nil
}

func (s *Store) Current(context.Context) (domain.Corpus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current, s.set, nil
}
