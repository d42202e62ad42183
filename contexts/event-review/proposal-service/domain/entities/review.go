package entities

import "time"

type Feeling string

const (
	FeelingNoOpinion Feeling = "NO_OPINION"
	FeelingNeutral   Feeling = "NEUTRAL"
	FeelingPositive  Feeling = "POSITIVE"
	FeelingNegative  Feeling = "NEGATIVE"
)

func ValidFeeling(feeling Feeling) bool {
	return feeling == FeelingNoOpinion ||
		feeling == FeelingNeutral ||
		feeling == FeelingPositive ||
		feeling == FeelingNegative
}

// Review is one reviewer's reaction to a proposal. At most one row exists per
// (proposal, reviewer); writes are upserts.
type Review struct {
	ProposalID string
	UserID     string
	Feeling    Feeling
	Note       *float64
	UpdatedAt  time.Time
}

// ReviewSummary aggregates the reviews of one proposal for display and for
// the denormalized sort cache.
type ReviewSummary struct {
	Positives int
	Negatives int
	Average   *float64
}

// UserReview is a single reviewer's view; both fields are nil when the
// reviewer has not reviewed the proposal.
type UserReview struct {
	Note    *float64
	Feeling *Feeling
}
