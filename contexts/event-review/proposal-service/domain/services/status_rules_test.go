package services

import (
	"errors"
	"testing"

	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
)

func TestApplyDeliberationResetsDownstreamStatuses(t *testing.T) {
	confirmed := entities.ConfirmationConfirmed
	proposal := entities.Proposal{
		DeliberationStatus: entities.DeliberationAccepted,
		PublicationStatus:  entities.PublicationPublished,
		ConfirmationStatus: &confirmed,
	}

	ApplyDeliberation(&proposal, entities.DeliberationPending)

	if proposal.DeliberationStatus != entities.DeliberationPending {
		t.Fatalf("expected pending, got %s", proposal.DeliberationStatus)
	}
	if proposal.PublicationStatus != entities.PublicationNotPublished {
		t.Fatalf("expected publication withdrawn, got %s", proposal.PublicationStatus)
	}
	if proposal.ConfirmationStatus != nil {
		t.Fatalf("expected confirmation cleared, got %s", *proposal.ConfirmationStatus)
	}
}

func TestApplyConfirmationForcesAcceptedAndPublished(t *testing.T) {
	proposal := entities.Proposal{
		DeliberationStatus: entities.DeliberationPending,
		PublicationStatus:  entities.PublicationNotPublished,
	}

	ApplyConfirmation(&proposal, entities.ConfirmationDeclined)

	if proposal.DeliberationStatus != entities.DeliberationAccepted {
		t.Fatalf("expected forced acceptance, got %s", proposal.DeliberationStatus)
	}
	if proposal.PublicationStatus != entities.PublicationPublished {
		t.Fatalf("expected forced publication, got %s", proposal.PublicationStatus)
	}
	if proposal.ConfirmationStatus == nil || *proposal.ConfirmationStatus != entities.ConfirmationDeclined {
		t.Fatalf("expected declined confirmation, got %+v", proposal.ConfirmationStatus)
	}
}

func TestApplyPublicationStartsConfirmationOnlyWhenAccepted(t *testing.T) {
	accepted := entities.Proposal{DeliberationStatus: entities.DeliberationAccepted}
	ApplyPublication(&accepted)
	if accepted.ConfirmationStatus == nil || *accepted.ConfirmationStatus != entities.ConfirmationPending {
		t.Fatalf("expected pending confirmation on accepted, got %+v", accepted.ConfirmationStatus)
	}

	rejected := entities.Proposal{DeliberationStatus: entities.DeliberationRejected}
	ApplyPublication(&rejected)
	if rejected.PublicationStatus != entities.PublicationPublished {
		t.Fatalf("expected rejection published, got %s", rejected.PublicationStatus)
	}
	if rejected.ConfirmationStatus != nil {
		t.Fatalf("expected no confirmation on rejection, got %s", *rejected.ConfirmationStatus)
	}
}

func TestValidateTriadRejectsOrphanConfirmation(t *testing.T) {
	pending := entities.ConfirmationPending
	bad := entities.Proposal{
		DeliberationStatus: entities.DeliberationPending,
		PublicationStatus:  entities.PublicationNotPublished,
		ConfirmationStatus: &pending,
	}
	if err := ValidateTriad(bad); !errors.Is(err, domainerrors.ErrInvalidStatusInput) {
		t.Fatalf("expected invalid triad, got %v", err)
	}

	good := entities.Proposal{
		DeliberationStatus: entities.DeliberationAccepted,
		PublicationStatus:  entities.PublicationPublished,
		ConfirmationStatus: &pending,
	}
	if err := ValidateTriad(good); err != nil {
		t.Fatalf("expected valid triad, got %v", err)
	}
}
