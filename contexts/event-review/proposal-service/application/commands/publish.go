package commands

import (
	"context"
	"log/slog"
	"strings"

	application "papercall/contexts/event-review/proposal-service/application"
	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
	"papercall/contexts/event-review/proposal-service/ports"
)

// DeliberationStatistics breaks the proposal population down by decision.
type DeliberationStatistics struct {
	Total    int
	Pending  int
	Accepted int
	Rejected int
}

// PublicationStatistics counts announced versus still-hidden proposals for
// one decision.
type PublicationStatistics struct {
	Published    int
	NotPublished int
}

// ConfirmationStatistics counts speaker responses on published accepted
// proposals.
type ConfirmationStatistics struct {
	Pending   int
	Confirmed int
	Declined  int
}

// ResultsStatistics is the publication dashboard: how far the deliberation
// is, what has been announced and how speakers responded. Drafts and archived
// proposals are excluded everywhere.
type ResultsStatistics struct {
	Deliberation  DeliberationStatistics
	Accepted      PublicationStatistics
	Rejected      PublicationStatistics
	Confirmations ConfirmationStatistics
}

// PublishUseCase announces deliberation results to speakers. Publication is
// guarded twice: the event must allow it and the actor must hold the
// publish capability.
type PublishUseCase struct {
	Repository ports.Repository
	Access     ports.AccessChecker
	Settings   ports.EventSettings
	Notifier   ports.Notifier
	Clock      ports.Clock
	Logger     *slog.Logger
}

// Statistics folds the status triad counts into the dashboard shape.
func (uc PublishUseCase) Statistics(ctx context.Context, eventID, actorID string) (ResultsStatistics, error) {
	if err := uc.ensurePublishAllowed(ctx, eventID, actorID); err != nil {
		return ResultsStatistics{}, err
	}
	groups, err := uc.Repository.CountByStatus(ctx, eventID)
	if err != nil {
		return ResultsStatistics{}, err
	}

	var stats ResultsStatistics
	for _, group := range groups {
		stats.Deliberation.Total += group.Count
		switch group.Deliberation {
		case entities.DeliberationPending:
			stats.Deliberation.Pending += group.Count
		case entities.DeliberationAccepted:
			stats.Deliberation.Accepted += group.Count
			if group.Publication == entities.PublicationPublished {
				stats.Accepted.Published += group.Count
			} else {
				stats.Accepted.NotPublished += group.Count
			}
		case entities.DeliberationRejected:
			stats.Deliberation.Rejected += group.Count
			if group.Publication == entities.PublicationPublished {
				stats.Rejected.Published += group.Count
			} else {
				stats.Rejected.NotPublished += group.Count
			}
		}
		if group.Confirmation == nil {
			continue
		}
		switch *group.Confirmation {
		case entities.ConfirmationPending:
			stats.Confirmations.Pending += group.Count
		case entities.ConfirmationConfirmed:
			stats.Confirmations.Confirmed += group.Count
		case entities.ConfirmationDeclined:
			stats.Confirmations.Declined += group.Count
		}
	}
	return stats, nil
}

// PublishAll announces every not-yet-published proposal carrying the given
// decision. An empty target set is an error: the caller asked to announce a
// decision that was never made.
func (uc PublishUseCase) PublishAll(ctx context.Context, eventID, actorID string, decision entities.DeliberationStatus, withEmails bool) (int, error) {
	if decision != entities.DeliberationAccepted && decision != entities.DeliberationRejected {
		return 0, domainerrors.ErrInvalidStatusInput
	}
	if err := uc.ensurePublishAllowed(ctx, eventID, actorID); err != nil {
		return 0, err
	}

	targets, err := uc.Repository.ListPublishable(ctx, eventID, decision)
	if err != nil {
		return 0, err
	}
	if len(targets) == 0 {
		return 0, domainerrors.ErrForbiddenOperation
	}

	ids := make([]string, 0, len(targets))
	for _, proposal := range targets {
		ids = append(ids, proposal.ProposalID)
	}
	published, err := uc.Repository.MarkPublished(ctx, eventID, ids, decision, uc.Clock.Now().UTC())
	if err != nil {
		return 0, err
	}

	application.ResolveLogger(uc.Logger).Info("results published",
		"event", "results_published",
		"module", "event-review/proposal-service",
		"layer", "application",
		"event_id", eventID,
		"decision", string(decision),
		"published", published,
	)
	if withEmails {
		for _, proposal := range targets {
			uc.notifySpeakers(ctx, proposal, decision)
		}
	}
	return published, nil
}

// Publish announces a single proposal. The proposal must exist, carry an
// accepted or rejected decision and not be published yet; any miss on that
// predicate reads as not found.
func (uc PublishUseCase) Publish(ctx context.Context, eventID, actorID, proposalID string, withEmails bool) error {
	if err := uc.ensurePublishAllowed(ctx, eventID, actorID); err != nil {
		return err
	}
	proposal, err := uc.Repository.GetPublishable(ctx, eventID, strings.TrimSpace(proposalID))
	if err != nil {
		return err
	}

	published, err := uc.Repository.MarkPublished(ctx, eventID, []string{proposal.ProposalID}, proposal.DeliberationStatus, uc.Clock.Now().UTC())
	if err != nil {
		return err
	}
	if published == 0 {
		return domainerrors.ErrProposalNotFound
	}

	application.ResolveLogger(uc.Logger).Info("result published",
		"event", "result_published",
		"module", "event-review/proposal-service",
		"layer", "application",
		"event_id", eventID,
		"proposal_id", proposal.ProposalID,
		"decision", string(proposal.DeliberationStatus),
	)
	if withEmails {
		uc.notifySpeakers(ctx, proposal, proposal.DeliberationStatus)
	}
	return nil
}

func (uc PublishUseCase) ensurePublishAllowed(ctx context.Context, eventID, actorID string) error {
	allowed, err := uc.Settings.AllowsResultsPublication(ctx, eventID)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrForbiddenOperation
	}
	return ensureActorCapability(ctx, uc.Access, actorID, ports.CapabilityPublishResults, eventID)
}

// notifySpeakers is fire-and-forget. A delivery failure is logged and never
// surfaces to the caller; the publication itself already happened.
func (uc PublishUseCase) notifySpeakers(ctx context.Context, proposal entities.Proposal, decision entities.DeliberationStatus) {
	recipients := proposal.SpeakerEmails()
	if len(recipients) == 0 {
		return
	}
	template := ports.TemplateProposalRejected
	if decision == entities.DeliberationAccepted {
		template = ports.TemplateProposalAccepted
	}
	err := uc.Notifier.Notify(ctx, ports.Notification{
		Template:   template,
		Recipients: recipients,
		Payload: map[string]any{
			"event_id":    proposal.EventID,
			"proposal_id": proposal.ProposalID,
			"title":       proposal.Title,
		},
	})
	if err != nil {
		application.ResolveLogger(uc.Logger).Error("result notification failed",
			"event", "result_notification_failed",
			"module", "event-review/proposal-service",
			"layer", "application",
			"event_id", proposal.EventID,
			"proposal_id", proposal.ProposalID,
			"template", template,
			"error", err,
		)
	}
}
