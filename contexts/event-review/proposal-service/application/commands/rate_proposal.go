package commands

import (
	"context"
	"log/slog"
	"strings"

	application "papercall/contexts/event-review/proposal-service/application"
	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
	"papercall/contexts/event-review/proposal-service/domain/services"
	"papercall/contexts/event-review/proposal-service/ports"
)

// RateProposalCommand records or replaces one reviewer's reaction.
type RateProposalCommand struct {
	EventID    string
	ActorID    string
	ProposalID string

	Feeling entities.Feeling
	Note    *float64
}

// RateProposalUseCase owns the review write path and the denormalized
// average it feeds. Every write recomputes the proposal's average so the
// rating sorts never read stale data.
type RateProposalUseCase struct {
	Repository ports.Repository
	Access     ports.AccessChecker
	Settings   ports.EventSettings
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc RateProposalUseCase) SaveReview(ctx context.Context, cmd RateProposalCommand) error {
	enabled, err := uc.Settings.ReviewsEnabled(ctx, cmd.EventID)
	if err != nil {
		return err
	}
	if !enabled {
		return domainerrors.ErrReviewDisabled
	}
	if err := ensureActorCapability(ctx, uc.Access, cmd.ActorID, ports.CapabilityAccessEvent, cmd.EventID); err != nil {
		return err
	}
	if !entities.ValidFeeling(cmd.Feeling) {
		return domainerrors.ErrInvalidReviewInput
	}
	if cmd.Note != nil && (*cmd.Note < 0 || *cmd.Note > 5) {
		return domainerrors.ErrInvalidReviewInput
	}

	proposalID := strings.TrimSpace(cmd.ProposalID)
	proposal, err := uc.Repository.GetProposal(ctx, cmd.EventID, proposalID)
	if err != nil {
		return err
	}

	err = uc.Repository.SaveReview(ctx, entities.Review{
		ProposalID: proposal.ProposalID,
		UserID:     strings.TrimSpace(cmd.ActorID),
		Feeling:    cmd.Feeling,
		Note:       cmd.Note,
		UpdatedAt:  uc.Clock.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := uc.refreshAverage(ctx, proposal.ProposalID); err != nil {
		return err
	}

	application.ResolveLogger(uc.Logger).Info("proposal review saved",
		"event", "proposal_review_saved",
		"module", "event-review/proposal-service",
		"layer", "application",
		"event_id", cmd.EventID,
		"proposal_id", proposal.ProposalID,
		"feeling", string(cmd.Feeling),
	)
	return nil
}

func (uc RateProposalUseCase) DeleteReview(ctx context.Context, eventID, actorID, proposalID string) error {
	enabled, err := uc.Settings.ReviewsEnabled(ctx, eventID)
	if err != nil {
		return err
	}
	if !enabled {
		return domainerrors.ErrReviewDisabled
	}
	if err := ensureActorCapability(ctx, uc.Access, actorID, ports.CapabilityAccessEvent, eventID); err != nil {
		return err
	}

	proposal, err := uc.Repository.GetProposal(ctx, eventID, strings.TrimSpace(proposalID))
	if err != nil {
		return err
	}
	if err := uc.Repository.DeleteReview(ctx, proposal.ProposalID, strings.TrimSpace(actorID)); err != nil {
		return err
	}
	if err := uc.refreshAverage(ctx, proposal.ProposalID); err != nil {
		return err
	}

	application.ResolveLogger(uc.Logger).Info("proposal review deleted",
		"event", "proposal_review_deleted",
		"module", "event-review/proposal-service",
		"layer", "application",
		"event_id", eventID,
		"proposal_id", proposal.ProposalID,
	)
	return nil
}

func (uc RateProposalUseCase) refreshAverage(ctx context.Context, proposalID string) error {
	reviews, err := uc.Repository.ListReviews(ctx, proposalID)
	if err != nil {
		return err
	}
	summary := services.Summarize(reviews)
	return uc.Repository.UpdateAvgRate(ctx, proposalID, summary.Average)
}
