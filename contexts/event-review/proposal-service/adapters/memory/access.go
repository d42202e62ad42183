package memory

import (
	"context"
	"sync"

	"papercall/contexts/event-review/proposal-service/ports"
)

// AccessChecker grants every capability unless told otherwise. Deny carves
// out a single (actor, capability) pair for forbidden-path tests.
type AccessChecker struct {
	mu     sync.RWMutex
	denied map[string]struct{}
}

func NewAccessChecker() *AccessChecker {
	return &AccessChecker{denied: make(map[string]struct{})}
}

func (a *AccessChecker) Deny(actorID string, capability ports.Capability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.denied[actorID+"/"+string(capability)] = struct{}{}
}

func (a *AccessChecker) HasCapability(_ context.Context, actorID string, capability ports.Capability, _ string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, denied := a.denied[actorID+"/"+string(capability)]
	return !denied, nil
}

// Settings answers both event gates from fixed flags, open by default.
type Settings struct {
	mu                  sync.RWMutex
	publicationDisabled bool
	reviewsDisabled     bool
}

func NewSettings() *Settings {
	return &Settings{}
}

func (s *Settings) DisableResultsPublication() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publicationDisabled = true
}

func (s *Settings) DisableReviews() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviewsDisabled = true
}

func (s *Settings) AllowsResultsPublication(_ context.Context, _ string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.publicationDisabled, nil
}

func (s *Settings) ReviewsEnabled(_ context.Context, _ string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.reviewsDisabled, nil
}
