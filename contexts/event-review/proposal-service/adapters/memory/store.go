package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
	"papercall/contexts/event-review/proposal-service/domain/services"
	"papercall/contexts/event-review/proposal-service/ports"
)

// Store is the in-memory proposal repository. It mirrors the relational
// adapter's filter and ordering semantics so use cases behave identically
// against either backing.
type Store struct {
	mu sync.RWMutex

	proposals map[string]entities.Proposal
	reviews   map[string]map[string]entities.Review
}

func NewStore(seed []entities.Proposal) *Store {
	proposals := make(map[string]entities.Proposal, len(seed))
	reviews := make(map[string]map[string]entities.Review)
	for _, proposal := range seed {
		for _, review := range proposal.Reviews {
			byUser, ok := reviews[proposal.ProposalID]
			if !ok {
				byUser = make(map[string]entities.Review)
				reviews[proposal.ProposalID] = byUser
			}
			byUser[review.UserID] = review
		}
		proposal.Reviews = nil
		proposals[proposal.ProposalID] = proposal
	}
	return &Store{proposals: proposals, reviews: reviews}
}

func (s *Store) GetProposal(_ context.Context, eventID, proposalID string) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[strings.TrimSpace(proposalID)]
	if !ok || proposal.EventID != eventID || proposal.IsDraft {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	proposal.Reviews = s.reviewsOf(proposal.ProposalID)
	return proposal, nil
}

func (s *Store) CountProposals(_ context.Context, eventID string, filters ports.ProposalsFilters) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matchAll(eventID, filters)), nil
}

func (s *Store) CountReviewedProposals(_ context.Context, eventID string, filters ports.ProposalsFilters) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, proposal := range s.matchAll(eventID, filters) {
		if _, ok := s.reviews[proposal.ProposalID][filters.UserID]; ok {
			count++
		}
	}
	return count, nil
}

func (s *Store) SearchProposals(
	_ context.Context,
	eventID string,
	filters ports.ProposalsFilters,
	page ports.Page,
	options ports.SearchOptions,
) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.matchAll(eventID, filters)
	sortProposals(items, filters.Sort)

	start := (page.Number - 1) * page.Size
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		return []entities.Proposal{}, nil
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	items = items[start:end]

	for i := range items {
		if options.IncludeReviews {
			items[i].Reviews = s.reviewsOf(items[i].ProposalID)
		}
		if !options.IncludeSpeakers {
			items[i].Speakers = nil
		}
	}
	return items, nil
}

func (s *Store) ListProposalIDs(_ context.Context, eventID string, filters ports.ProposalsFilters) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.matchAll(eventID, filters)
	sortProposals(items, filters.Sort)
	ids := make([]string, 0, len(items))
	for _, proposal := range items {
		ids = append(ids, proposal.ProposalID)
	}
	return ids, nil
}

func (s *Store) UpdateDeliberation(
	_ context.Context,
	eventID string,
	proposalIDs []string,
	status entities.DeliberationStatus,
	now time.Time,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, proposalID := range proposalIDs {
		proposal, ok := s.proposals[proposalID]
		if !ok || proposal.EventID != eventID || proposal.Archived() {
			continue
		}
		if proposal.DeliberationStatus == status {
			continue
		}
		services.ApplyDeliberation(&proposal, status)
		proposal.UpdatedAt = now.UTC()
		s.proposals[proposalID] = proposal
		changed++
	}
	return changed, nil
}

func (s *Store) ForceConfirmation(
	_ context.Context,
	eventID string,
	proposalIDs []string,
	status entities.ConfirmationStatus,
	now time.Time,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, proposalID := range proposalIDs {
		proposal, ok := s.proposals[proposalID]
		if !ok || proposal.EventID != eventID || proposal.Archived() {
			continue
		}
		services.ApplyConfirmation(&proposal, status)
		proposal.UpdatedAt = now.UTC()
		s.proposals[proposalID] = proposal
		changed++
	}
	return changed, nil
}

func (s *Store) ArchiveProposals(_ context.Context, eventID string, proposalIDs []string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, proposalID := range proposalIDs {
		proposal, ok := s.proposals[proposalID]
		if !ok || proposal.EventID != eventID || proposal.Archived() {
			continue
		}
		archivedAt := now.UTC()
		proposal.ArchivedAt = &archivedAt
		proposal.UpdatedAt = archivedAt
		s.proposals[proposalID] = proposal
		changed++
	}
	return changed, nil
}

func (s *Store) RestoreProposals(_ context.Context, eventID string, proposalIDs []string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, proposalID := range proposalIDs {
		proposal, ok := s.proposals[proposalID]
		if !ok || proposal.EventID != eventID || !proposal.Archived() {
			continue
		}
		proposal.ArchivedAt = nil
		proposal.UpdatedAt = now.UTC()
		s.proposals[proposalID] = proposal
		changed++
	}
	return changed, nil
}

func (s *Store) ListPublishable(_ context.Context, eventID string, decision entities.DeliberationStatus) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Proposal, 0)
	for _, proposal := range s.proposals {
		if proposal.EventID != eventID || proposal.IsDraft || proposal.Archived() {
			continue
		}
		if proposal.DeliberationStatus != decision {
			continue
		}
		if proposal.PublicationStatus != entities.PublicationNotPublished {
			continue
		}
		items = append(items, proposal)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetPublishable(_ context.Context, eventID, proposalID string) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposal, ok := s.proposals[strings.TrimSpace(proposalID)]
	if !ok || proposal.EventID != eventID || proposal.IsDraft || proposal.Archived() {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	if proposal.DeliberationStatus != entities.DeliberationAccepted &&
		proposal.DeliberationStatus != entities.DeliberationRejected {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	if proposal.PublicationStatus != entities.PublicationNotPublished {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) MarkPublished(
	_ context.Context,
	eventID string,
	proposalIDs []string,
	decision entities.DeliberationStatus,
	now time.Time,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, proposalID := range proposalIDs {
		proposal, ok := s.proposals[proposalID]
		if !ok || proposal.EventID != eventID || proposal.IsDraft || proposal.Archived() {
			continue
		}
		if proposal.DeliberationStatus != decision {
			continue
		}
		if proposal.PublicationStatus != entities.PublicationNotPublished {
			continue
		}
		services.ApplyPublication(&proposal)
		proposal.UpdatedAt = now.UTC()
		s.proposals[proposalID] = proposal
		changed++
	}
	return changed, nil
}

func (s *Store) CountByStatus(_ context.Context, eventID string) ([]ports.StatusGroupCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type triad struct {
		deliberation entities.DeliberationStatus
		publication  entities.PublicationStatus
		confirmation string
	}
	buckets := make(map[triad]int)
	for _, proposal := range s.proposals {
		if proposal.EventID != eventID || proposal.IsDraft || proposal.Archived() {
			continue
		}
		key := triad{
			deliberation: proposal.DeliberationStatus,
			publication:  proposal.PublicationStatus,
		}
		if proposal.ConfirmationStatus != nil {
			key.confirmation = string(*proposal.ConfirmationStatus)
		}
		buckets[key]++
	}

	groups := make([]ports.StatusGroupCount, 0, len(buckets))
	for key, count := range buckets {
		group := ports.StatusGroupCount{
			Deliberation: key.deliberation,
			Publication:  key.publication,
			Count:        count,
		}
		if key.confirmation != "" {
			confirmation := entities.ConfirmationStatus(key.confirmation)
			group.Confirmation = &confirmation
		}
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Deliberation != groups[j].Deliberation {
			return groups[i].Deliberation < groups[j].Deliberation
		}
		return groups[i].Publication < groups[j].Publication
	})
	return groups, nil
}

func (s *Store) SaveReview(_ context.Context, review entities.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byUser, ok := s.reviews[review.ProposalID]
	if !ok {
		byUser = make(map[string]entities.Review)
		s.reviews[review.ProposalID] = byUser
	}
	byUser[review.UserID] = review
	return nil
}

func (s *Store) DeleteReview(_ context.Context, proposalID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews[proposalID], userID)
	return nil
}

func (s *Store) ListReviews(_ context.Context, proposalID string) ([]entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reviewsOf(proposalID), nil
}

func (s *Store) UpdateAvgRate(_ context.Context, proposalID string, average *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[proposalID]
	if !ok {
		return domainerrors.ErrProposalNotFound
	}
	proposal.AvgRateForSort = average
	s.proposals[proposalID] = proposal
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) reviewsOf(proposalID string) []entities.Review {
	items := make([]entities.Review, 0, len(s.reviews[proposalID]))
	for _, review := range s.reviews[proposalID] {
		items = append(items, review)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UserID < items[j].UserID
	})
	return items
}

func (s *Store) matchAll(eventID string, filters ports.ProposalsFilters) []entities.Proposal {
	items := make([]entities.Proposal, 0)
	for _, proposal := range s.proposals {
		if s.matches(proposal, eventID, filters) {
			items = append(items, proposal)
		}
	}
	return items
}

func (s *Store) matches(proposal entities.Proposal, eventID string, filters ports.ProposalsFilters) bool {
	if proposal.EventID != eventID || proposal.IsDraft {
		return false
	}
	if filters.Status == ports.StatusArchived {
		if !proposal.Archived() {
			return false
		}
	} else if proposal.Archived() {
		return false
	}
	if !matchesStatus(proposal, filters.Status) {
		return false
	}
	if !matchesText(proposal, filters) {
		return false
	}
	if filters.FormatID != "" && !containsID(proposal.FormatIDs, filters.FormatID) {
		return false
	}
	if filters.CategoryID != "" && !containsID(proposal.CategoryIDs, filters.CategoryID) {
		return false
	}
	if filters.TagID != "" && !containsID(proposal.TagIDs, filters.TagID) {
		return false
	}
	if filters.SpeakerID != "" {
		found := false
		for _, speaker := range proposal.Speakers {
			if speaker.SpeakerID == filters.SpeakerID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return s.matchesReviews(proposal, filters)
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func matchesStatus(proposal entities.Proposal, status ports.StatusFilter) bool {
	switch status {
	case ports.StatusPending:
		return proposal.DeliberationStatus == entities.DeliberationPending
	case ports.StatusAccepted:
		return proposal.DeliberationStatus == entities.DeliberationAccepted
	case ports.StatusRejected:
		return proposal.DeliberationStatus == entities.DeliberationRejected
	case ports.StatusNotAnswered:
		return proposal.DeliberationStatus == entities.DeliberationAccepted &&
			proposal.PublicationStatus == entities.PublicationPublished &&
			proposal.ConfirmationStatus != nil &&
			*proposal.ConfirmationStatus == entities.ConfirmationPending
	case ports.StatusConfirmed:
		return proposal.ConfirmationStatus != nil &&
			*proposal.ConfirmationStatus == entities.ConfirmationConfirmed
	case ports.StatusDeclined:
		return proposal.ConfirmationStatus != nil &&
			*proposal.ConfirmationStatus == entities.ConfirmationDeclined
	default:
		return true
	}
}

// matchesText is a single disjunctive clause: title substring, speaker name
// substring when speaker search is on, and proposal number equality when the
// query parsed as a number.
func matchesText(proposal entities.Proposal, filters ports.ProposalsFilters) bool {
	if filters.Text == "" && filters.ProposalNumber == nil {
		return true
	}
	needle := strings.ToLower(filters.Text)
	if needle != "" {
		if strings.Contains(strings.ToLower(proposal.Title), needle) {
			return true
		}
		if filters.SearchSpeakers {
			for _, speaker := range proposal.Speakers {
				if strings.Contains(strings.ToLower(speaker.Name), needle) {
					return true
				}
			}
		}
	}
	if filters.ProposalNumber != nil && proposal.ProposalNumber != nil &&
		*proposal.ProposalNumber == *filters.ProposalNumber {
		return true
	}
	return false
}

func (s *Store) matchesReviews(proposal entities.Proposal, filters ports.ProposalsFilters) bool {
	switch filters.Reviews {
	case ports.ReviewsReviewed:
		_, ok := s.reviews[proposal.ProposalID][filters.UserID]
		return ok
	case ports.ReviewsNotReviewed:
		_, ok := s.reviews[proposal.ProposalID][filters.UserID]
		return !ok
	case ports.ReviewsMyFavorites:
		review, ok := s.reviews[proposal.ProposalID][filters.UserID]
		return ok && review.Feeling == entities.FeelingPositive
	default:
		return true
	}
}

// sortProposals orders deterministically: every sort breaks ties on title
// ascending, and rating sorts push unrated proposals to the end.
func sortProposals(items []entities.Proposal, order ports.Sort) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch order {
		case ports.SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case ports.SortHighest:
			if less, decided := compareRates(a.AvgRateForSort, b.AvgRateForSort, true); decided {
				return less
			}
		case ports.SortLowest:
			if less, decided := compareRates(a.AvgRateForSort, b.AvgRateForSort, false); decided {
				return less
			}
		case ports.SortMostComments:
			if a.CommentsCount != b.CommentsCount {
				return a.CommentsCount > b.CommentsCount
			}
		case ports.SortFewestComments:
			if a.CommentsCount != b.CommentsCount {
				return a.CommentsCount < b.CommentsCount
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.Title < b.Title
	})
}

// compareRates orders nullable averages the way the relational adapter does:
// descending pushes unrated proposals last, ascending puts them first.
func compareRates(a, b *float64, descending bool) (bool, bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return !descending, true
	case b == nil:
		return descending, true
	case *a == *b:
		return false, false
	case descending:
		return *a > *b, true
	default:
		return *a < *b, true
	}
}
