package queries

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	application "papercall/contexts/event-review/proposal-service/application"
	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
	"papercall/contexts/event-review/proposal-service/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SearchQuery carries the raw, user-controlled filter specification. Tokens
// outside the closed filter sets are ignored rather than rejected.
type SearchQuery struct {
	EventID string
	UserID  string

	Query   string
	Sort    string
	Reviews string
	Status  string

	FormatID   string
	CategoryID string
	TagID      string
	SpeakerID  string

	Page     int
	PageSize int
}

type SearchStatistics struct {
	Total    int
	Reviewed int
}

type Pagination struct {
	Current int
	Total   int
}

type SearchResult struct {
	Proposals  []entities.Proposal
	Pagination Pagination
	Statistics SearchStatistics
}

// SearchUseCase resolves filter specifications into counts, pages and id
// lists. DisplaySpeakers and DisplayReviews are construction-time options of
// the hosting process, not user input; when speakers are hidden, text search
// skips speaker names entirely.
type SearchUseCase struct {
	Repository      ports.Repository
	Access          ports.AccessChecker
	DisplaySpeakers bool
	DisplayReviews  bool
	Logger          *slog.Logger
}

func (uc SearchUseCase) Search(ctx context.Context, query SearchQuery) (SearchResult, error) {
	if err := uc.ensureAccess(ctx, query); err != nil {
		return SearchResult{}, err
	}
	filters := uc.ResolveFilters(query)

	total, err := uc.Repository.CountProposals(ctx, query.EventID, filters)
	if err != nil {
		return SearchResult{}, err
	}
	reviewed, err := uc.Repository.CountReviewedProposals(ctx, query.EventID, filters)
	if err != nil {
		return SearchResult{}, err
	}

	page := resolvePage(query)
	items, err := uc.Repository.SearchProposals(ctx, query.EventID, filters, page, ports.SearchOptions{
		IncludeSpeakers: uc.DisplaySpeakers,
		IncludeReviews:  uc.DisplayReviews,
	})
	if err != nil {
		return SearchResult{}, err
	}

	application.ResolveLogger(uc.Logger).Debug("proposal search resolved",
		"event", "proposal_search_resolved",
		"module", "event-review/proposal-service",
		"layer", "application",
		"event_id", query.EventID,
		"total", total,
		"page", page.Number,
	)
	return SearchResult{
		Proposals: items,
		Pagination: Pagination{
			Current: page.Number,
			Total:   pageCount(total, page.Size),
		},
		Statistics: SearchStatistics{Total: total, Reviewed: reviewed},
	}, nil
}

// SearchIDs returns the full ordered id list under the filters, for
// cross-page navigation and "apply to all matching" bulk targets.
func (uc SearchUseCase) SearchIDs(ctx context.Context, query SearchQuery) ([]string, error) {
	if err := uc.ensureAccess(ctx, query); err != nil {
		return nil, err
	}
	return uc.Repository.ListProposalIDs(ctx, query.EventID, uc.ResolveFilters(query))
}

func (uc SearchUseCase) Statistics(ctx context.Context, query SearchQuery) (SearchStatistics, error) {
	if err := uc.ensureAccess(ctx, query); err != nil {
		return SearchStatistics{}, err
	}
	filters := uc.ResolveFilters(query)
	total, err := uc.Repository.CountProposals(ctx, query.EventID, filters)
	if err != nil {
		return SearchStatistics{}, err
	}
	reviewed, err := uc.Repository.CountReviewedProposals(ctx, query.EventID, filters)
	if err != nil {
		return SearchStatistics{}, err
	}
	return SearchStatistics{Total: total, Reviewed: reviewed}, nil
}

func (uc SearchUseCase) GetProposal(ctx context.Context, eventID, userID, proposalID string) (entities.Proposal, error) {
	if err := uc.ensureAccess(ctx, SearchQuery{EventID: eventID, UserID: userID}); err != nil {
		return entities.Proposal{}, err
	}
	item, err := uc.Repository.GetProposal(ctx, eventID, strings.TrimSpace(proposalID))
	if err != nil {
		return entities.Proposal{}, err
	}
	if !uc.DisplaySpeakers {
		item.Speakers = nil
	}
	if !uc.DisplayReviews {
		item.Reviews = nil
	}
	return item, nil
}

// ResolveFilters normalizes the raw query into the adapter-facing filter
// specification. A query of all digits (optionally prefixed with '#') filters
// on the proposal number in addition to, not instead of, the text search.
func (uc SearchUseCase) ResolveFilters(query SearchQuery) ports.ProposalsFilters {
	filters := ports.ProposalsFilters{
		UserID:         strings.TrimSpace(query.UserID),
		Sort:           resolveSort(query.Sort),
		Reviews:        resolveReviews(query.Reviews),
		Status:         resolveStatus(query.Status),
		FormatID:       strings.TrimSpace(query.FormatID),
		CategoryID:     strings.TrimSpace(query.CategoryID),
		TagID:          strings.TrimSpace(query.TagID),
		SpeakerID:      strings.TrimSpace(query.SpeakerID),
		SearchSpeakers: uc.DisplaySpeakers,
	}

	text := strings.TrimSpace(query.Query)
	token := strings.TrimPrefix(text, "#")
	if token != "" && allDigits(token) {
		if number, err := strconv.Atoi(token); err == nil {
			filters.ProposalNumber = &number
		}
		filters.Text = token
	} else {
		filters.Text = text
	}
	return filters
}

func (uc SearchUseCase) ensureAccess(ctx context.Context, query SearchQuery) error {
	actorID := strings.TrimSpace(query.UserID)
	if actorID == "" {
		return domainerrors.ErrForbiddenOperation
	}
	allowed, err := uc.Access.HasCapability(ctx, actorID, ports.CapabilityAccessEvent, query.EventID)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrForbiddenOperation
	}
	return nil
}

func resolveSort(raw string) ports.Sort {
	switch ports.Sort(strings.TrimSpace(raw)) {
	case ports.SortOldest:
		return ports.SortOldest
	case ports.SortHighest:
		return ports.SortHighest
	case ports.SortLowest:
		return ports.SortLowest
	case ports.SortMostComments:
		return ports.SortMostComments
	case ports.SortFewestComments:
		return ports.SortFewestComments
	default:
		return ports.SortNewest
	}
}

func resolveReviews(raw string) ports.ReviewsFilter {
	switch ports.ReviewsFilter(strings.TrimSpace(raw)) {
	case ports.ReviewsReviewed:
		return ports.ReviewsReviewed
	case ports.ReviewsNotReviewed:
		return ports.ReviewsNotReviewed
	case ports.ReviewsMyFavorites:
		return ports.ReviewsMyFavorites
	default:
		return ""
	}
}

func resolveStatus(raw string) ports.StatusFilter {
	switch ports.StatusFilter(strings.TrimSpace(raw)) {
	case ports.StatusPending:
		return ports.StatusPending
	case ports.StatusAccepted:
		return ports.StatusAccepted
	case ports.StatusRejected:
		return ports.StatusRejected
	case ports.StatusNotAnswered:
		return ports.StatusNotAnswered
	case ports.StatusConfirmed:
		return ports.StatusConfirmed
	case ports.StatusDeclined:
		return ports.StatusDeclined
	case ports.StatusArchived:
		return ports.StatusArchived
	default:
		return ""
	}
}

func resolvePage(query SearchQuery) ports.Page {
	page := ports.Page{Number: query.Page, Size: query.PageSize}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size <= 0 {
		page.Size = defaultPageSize
	}
	if page.Size > maxPageSize {
		page.Size = maxPageSize
	}
	return page
}

func pageCount(total, size int) int {
	if total == 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

func allDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
