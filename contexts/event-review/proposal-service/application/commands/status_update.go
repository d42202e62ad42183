package commands

import (
	"context"
	"log/slog"

	application "papercall/contexts/event-review/proposal-service/application"
	"papercall/contexts/event-review/proposal-service/application/queries"
	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
	"papercall/contexts/event-review/proposal-service/ports"
)

// UpdateStatusCommand changes the status triad on a set of proposals. Exactly
// one of Deliberation or Confirmation is expected; when both are set the
// confirmation wins, when neither is set the call is a no-op.
type UpdateStatusCommand struct {
	EventID     string
	ActorID     string
	ProposalIDs []string

	Deliberation *entities.DeliberationStatus
	Confirmation *entities.ConfirmationStatus
}

// StatusUseCase is the only writer of the status triad. Archived proposals
// are frozen: every write here excludes them at the store level.
type StatusUseCase struct {
	Repository ports.Repository
	Access     ports.AccessChecker
	Search     queries.SearchUseCase
	Clock      ports.Clock
	Logger     *slog.Logger
}

// Update applies the command and returns the number of rows that actually
// changed. Deliberation changes skip rows already in the target status, so
// callers must treat the returned count, not the id-set size, as the truth.
func (uc StatusUseCase) Update(ctx context.Context, cmd UpdateStatusCommand) (int, error) {
	if err := ensureActorCapability(ctx, uc.Access, cmd.ActorID, ports.CapabilityChangeProposalStatus, cmd.EventID); err != nil {
		return 0, err
	}
	ids := sanitizeIDs(cmd.ProposalIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	logger := application.ResolveLogger(uc.Logger)
	now := uc.Clock.Now().UTC()

	switch {
	case cmd.Confirmation != nil:
		if !entities.ValidConfirmationStatus(*cmd.Confirmation) {
			return 0, domainerrors.ErrInvalidStatusInput
		}
		changed, err := uc.Repository.ForceConfirmation(ctx, cmd.EventID, ids, *cmd.Confirmation, now)
		if err != nil {
			return 0, err
		}
		logger.Info("proposal confirmation recorded",
			"event", "proposal_confirmation_recorded",
			"module", "event-review/proposal-service",
			"layer", "application",
			"event_id", cmd.EventID,
			"confirmation_status", string(*cmd.Confirmation),
			"changed", changed,
		)
		return changed, nil
	case cmd.Deliberation != nil:
		if !entities.ValidDeliberationStatus(*cmd.Deliberation) {
			return 0, domainerrors.ErrInvalidStatusInput
		}
		changed, err := uc.Repository.UpdateDeliberation(ctx, cmd.EventID, ids, *cmd.Deliberation, now)
		if err != nil {
			return 0, err
		}
		logger.Info("proposal deliberation updated",
			"event", "proposal_deliberation_updated",
			"module", "event-review/proposal-service",
			"layer", "application",
			"event_id", cmd.EventID,
			"deliberation_status", string(*cmd.Deliberation),
			"requested", len(ids),
			"changed", changed,
		)
		return changed, nil
	default:
		return 0, nil
	}
}

// UpdateAll applies a deliberation decision to every proposal matching the
// filter specification. The id list is a snapshot: proposals entering or
// leaving the filter between resolution and the write are not re-checked.
func (uc StatusUseCase) UpdateAll(ctx context.Context, query queries.SearchQuery, status entities.DeliberationStatus) (int, error) {
	ids, err := uc.Search.SearchIDs(ctx, query)
	if err != nil {
		return 0, err
	}
	return uc.Update(ctx, UpdateStatusCommand{
		EventID:      query.EventID,
		ActorID:      query.UserID,
		ProposalIDs:  ids,
		Deliberation: &status,
	})
}

// Archive hides proposals from default views and freezes their status triad.
// Already-archived ids are skipped, so a repeated call changes zero rows.
func (uc StatusUseCase) Archive(ctx context.Context, eventID, actorID string, proposalIDs []string) (int, error) {
	if err := ensureActorCapability(ctx, uc.Access, actorID, ports.CapabilityChangeProposalStatus, eventID); err != nil {
		return 0, err
	}
	ids := sanitizeIDs(proposalIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	changed, err := uc.Repository.ArchiveProposals(ctx, eventID, ids, uc.Clock.Now().UTC())
	if err != nil {
		return 0, err
	}
	application.ResolveLogger(uc.Logger).Info("proposals archived",
		"event", "proposals_archived",
		"module", "event-review/proposal-service",
		"layer", "application",
		"event_id", eventID,
		"changed", changed,
	)
	return changed, nil
}

// Restore reverses Archive without touching the status triad.
func (uc StatusUseCase) Restore(ctx context.Context, eventID, actorID string, proposalIDs []string) (int, error) {
	if err := ensureActorCapability(ctx, uc.Access, actorID, ports.CapabilityChangeProposalStatus, eventID); err != nil {
		return 0, err
	}
	ids := sanitizeIDs(proposalIDs)
	if len(ids) == 0 {
		return 0, nil
	}
	changed, err := uc.Repository.RestoreProposals(ctx, eventID, ids, uc.Clock.Now().UTC())
	if err != nil {
		return 0, err
	}
	application.ResolveLogger(uc.Logger).Info("proposals restored",
		"event", "proposals_restored",
		"module", "event-review/proposal-service",
		"layer", "application",
		"event_id", eventID,
		"changed", changed,
	)
	return changed, nil
}
