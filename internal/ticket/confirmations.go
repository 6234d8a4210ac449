package ticket

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CloseConfirmation is a short-lived token gating channel deletion. A
// confirmation that is never confirmed simply expires: the ticket rolls back
// from CLOSING to OPEN with no side effects.
type CloseConfirmation struct {
	Token       string
	ChannelID   string
	ChannelName string
	RequestedBy string
	ExpiresAt   time.Time
}

// confirmationStore holds pending close confirmations. Expired entries are
// purged lazily on access.
type confirmationStore struct {
	mu      sync.Mutex
	pending map[string]*CloseConfirmation
	now     func() time.Time
	ttl     time.Duration
}

func newConfirmationStore(now func() time.Time, ttl time.Duration) *confirmationStore {
	return &confirmationStore{
		pending: make(map[string]*CloseConfirmation),
		now:     now,
		ttl:     ttl,
	}
}

// issue creates and stores a new confirmation for the channel.
func (s *confirmationStore) issue(channelID, channelName, requestedBy string) *CloseConfirmation {
	confirmation := &CloseConfirmation{
		Token:       uuid.NewString(),
		ChannelID:   channelID,
		ChannelName: channelName,
		RequestedBy: requestedBy,
		ExpiresAt:   s.now().Add(s.ttl),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.pending[confirmation.Token] = confirmation
	return confirmation
}

// take removes and returns the confirmation for token, or nil when the token
// is unknown or already expired.
func (s *confirmationStore) take(token string) *CloseConfirmation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	confirmation, ok := s.pending[token]
	if !ok {
		return nil
	}
	delete(s.pending, token)
	return confirmation
}

// drop discards a pending confirmation, reporting whether it existed.
func (s *confirmationStore) drop(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[token]
	delete(s.pending, token)
	return ok
}

func (s *confirmationStore) purgeLocked() {
	cutoff := s.now()
	for token, confirmation := range s.pending {
		if confirmation.ExpiresAt.Before(cutoff) {
			delete(s.pending, token)
		}
	}
}
