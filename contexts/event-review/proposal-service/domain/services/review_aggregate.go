package services

import (
	"papercall/contexts/event-review/proposal-service/domain/entities"
)

// Summarize reduces a proposal's reviews to positive/negative counts and the
// note average. Reviews with a NO_OPINION feeling never contribute to the
// average; the average is nil when no review carries a note.
func Summarize(reviews []entities.Review) entities.ReviewSummary {
	summary := entities.ReviewSummary{}
	var sum float64
	var rated int
	for _, review := range reviews {
		switch review.Feeling {
		case entities.FeelingPositive:
			summary.Positives++
		case entities.FeelingNegative:
			summary.Negatives++
		}
		if review.Feeling == entities.FeelingNoOpinion || review.Note == nil {
			continue
		}
		sum += *review.Note
		rated++
	}
	if rated > 0 {
		average := sum / float64(rated)
		summary.Average = &average
	}
	return summary
}

// ReviewOfUser extracts one reviewer's note and feeling; both are nil when
// the reviewer has no review on the proposal.
func ReviewOfUser(reviews []entities.Review, userID string) entities.UserReview {
	for _, review := range reviews {
		if review.UserID == userID {
			feeling := review.Feeling
			return entities.UserReview{Note: review.Note, Feeling: &feeling}
		}
	}
	return entities.UserReview{}
}
