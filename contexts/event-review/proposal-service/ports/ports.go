package ports

import (
	"context"
	"time"

	"papercall/contexts/event-review/proposal-service/domain/entities"
)

type Capability string

const (
	CapabilityAccessEvent          Capability = "access-event"
	CapabilityChangeProposalStatus Capability = "change-proposal-status"
	CapabilityPublishResults       Capability = "publish-event-results"
)

const (
	TemplateProposalAccepted = "speakers-proposal-accepted"
	TemplateProposalRejected = "speakers-proposal-rejected"
)

type Sort string

const (
	SortNewest         Sort = "newest"
	SortOldest         Sort = "oldest"
	SortHighest        Sort = "highest"
	SortLowest         Sort = "lowest"
	SortMostComments   Sort = "most-comments"
	SortFewestComments Sort = "fewest-comments"
)

type ReviewsFilter string

const (
	ReviewsReviewed    ReviewsFilter = "reviewed"
	ReviewsNotReviewed ReviewsFilter = "not-reviewed"
	ReviewsMyFavorites ReviewsFilter = "my-favorites"
)

type StatusFilter string

const (
	StatusPending     StatusFilter = "pending"
	StatusAccepted    StatusFilter = "accepted"
	StatusRejected    StatusFilter = "rejected"
	StatusNotAnswered StatusFilter = "not-answered"
	StatusConfirmed   StatusFilter = "confirmed"
	StatusDeclined    StatusFilter = "declined"
	StatusArchived    StatusFilter = "archived"
)

// ProposalsFilters is the normalized filter specification handed to store
// adapters. Dimensions combine with AND semantics. Drafts are always
// excluded; archived proposals are excluded unless Status is "archived", in
// which case only archived proposals match.
type ProposalsFilters struct {
	// UserID scopes the Reviews dimension to the current reviewer.
	UserID string

	Text           string
	ProposalNumber *int
	Sort           Sort
	Reviews        ReviewsFilter
	Status         StatusFilter

	FormatID   string
	CategoryID string
	TagID      string
	SpeakerID  string

	// SearchSpeakers extends text matching to speaker names. It is switched
	// off when speaker display is disabled so search cannot leak identities.
	SearchSpeakers bool
}

type Page struct {
	Number int
	Size   int
}

type SearchOptions struct {
	IncludeSpeakers bool
	IncludeReviews  bool
}

// StatusGroupCount is one GROUP BY bucket over the status triad, restricted
// to non-draft, non-archived proposals.
type StatusGroupCount struct {
	Deliberation entities.DeliberationStatus
	Publication  entities.PublicationStatus
	Confirmation *entities.ConfirmationStatus
	Count        int
}

type Repository interface {
	GetProposal(ctx context.Context, eventID, proposalID string) (entities.Proposal, error)
	CountProposals(ctx context.Context, eventID string, filters ProposalsFilters) (int, error)
	CountReviewedProposals(ctx context.Context, eventID string, filters ProposalsFilters) (int, error)
	SearchProposals(ctx context.Context, eventID string, filters ProposalsFilters, page Page, options SearchOptions) ([]entities.Proposal, error)
	ListProposalIDs(ctx context.Context, eventID string, filters ProposalsFilters) ([]string, error)

	// UpdateDeliberation issues one conditional bulk write: only non-archived
	// rows whose current deliberation status differs from the target change,
	// and changed rows get their publication and confirmation reset.
	UpdateDeliberation(ctx context.Context, eventID string, proposalIDs []string, status entities.DeliberationStatus, now time.Time) (int, error)
	// ForceConfirmation sets ACCEPTED + PUBLISHED + the given confirmation on
	// every non-archived row in the id set.
	ForceConfirmation(ctx context.Context, eventID string, proposalIDs []string, status entities.ConfirmationStatus, now time.Time) (int, error)
	ArchiveProposals(ctx context.Context, eventID string, proposalIDs []string, now time.Time) (int, error)
	RestoreProposals(ctx context.Context, eventID string, proposalIDs []string, now time.Time) (int, error)

	ListPublishable(ctx context.Context, eventID string, decision entities.DeliberationStatus) ([]entities.Proposal, error)
	GetPublishable(ctx context.Context, eventID, proposalID string) (entities.Proposal, error)
	// MarkPublished publishes rows still unpublished with the given decision;
	// accepted rows start a pending confirmation.
	MarkPublished(ctx context.Context, eventID string, proposalIDs []string, decision entities.DeliberationStatus, now time.Time) (int, error)
	CountByStatus(ctx context.Context, eventID string) ([]StatusGroupCount, error)

	SaveReview(ctx context.Context, review entities.Review) error
	DeleteReview(ctx context.Context, proposalID, userID string) error
	ListReviews(ctx context.Context, proposalID string) ([]entities.Review, error)
	UpdateAvgRate(ctx context.Context, proposalID string, average *float64) error
}

// AccessChecker is the pre-checked permission collaborator. Capabilities are
// scoped to an event.
type AccessChecker interface {
	HasCapability(ctx context.Context, actorID string, capability Capability, eventID string) (bool, error)
}

// EventSettings exposes the event-level feature gates owned by the
// surrounding domain.
type EventSettings interface {
	AllowsResultsPublication(ctx context.Context, eventID string) (bool, error)
	ReviewsEnabled(ctx context.Context, eventID string) (bool, error)
}

type Notification struct {
	Template   string
	Recipients []string
	Payload    map[string]any
}

// Notifier is the fire-and-forget delivery sink. Failures never gate the
// mutation that triggered the notification.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

type Clock interface {
	Now() time.Time
}
