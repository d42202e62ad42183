package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"papercall/contexts/event-review/proposal-service/adapters/memory"
	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
)

type publishFixture struct {
	store    *memory.Store
	access   *memory.AccessChecker
	settings *memory.Settings
	notifier *memory.Notifier
	uc       PublishUseCase
}

func newPublishFixture(seed []entities.Proposal) publishFixture {
	store := memory.NewStore(seed)
	access := memory.NewAccessChecker()
	settings := memory.NewSettings()
	notifier := memory.NewNotifier()
	return publishFixture{
		store:    store,
		access:   access,
		settings: settings,
		notifier: notifier,
		uc: PublishUseCase{
			Repository: store,
			Access:     access,
			Settings:   settings,
			Notifier:   notifier,
			Clock:      fixedClock{now: testNow},
		},
	}
}

func acceptedProposal(id string, speakers ...entities.Speaker) entities.Proposal {
	return seedProposal(id, func(p *entities.Proposal) {
		p.DeliberationStatus = entities.DeliberationAccepted
		p.Speakers = speakers
	})
}

func TestPublishAllRejectsEmptySelection(t *testing.T) {
	f := newPublishFixture([]entities.Proposal{
		seedProposal("p1", nil),
	})

	_, err := f.uc.PublishAll(context.Background(), testEventID, "organizer-1", entities.DeliberationAccepted, false)
	if !errors.Is(err, domainerrors.ErrForbiddenOperation) {
		t.Fatalf("expected forbidden for empty target set, got %v", err)
	}
}

func TestPublishAllRejectsPendingDecision(t *testing.T) {
	f := newPublishFixture(nil)

	_, err := f.uc.PublishAll(context.Background(), testEventID, "organizer-1", entities.DeliberationPending, false)
	if !errors.Is(err, domainerrors.ErrInvalidStatusInput) {
		t.Fatalf("expected invalid decision, got %v", err)
	}
}

func TestPublishAllStartsConfirmationAndSendsEmails(t *testing.T) {
	f := newPublishFixture([]entities.Proposal{
		acceptedProposal("p1", entities.Speaker{SpeakerID: "s1", Name: "Ada", Email: "ada@example.org"}),
		acceptedProposal("p2",
			entities.Speaker{SpeakerID: "s2", Name: "Grace", Email: "grace@example.org"},
			entities.Speaker{SpeakerID: "s3", Name: "Linus", Email: "linus@example.org"},
		),
	})

	published, err := f.uc.PublishAll(context.Background(), testEventID, "organizer-1", entities.DeliberationAccepted, true)
	if err != nil {
		t.Fatalf("publish all failed: %v", err)
	}
	if published != 2 {
		t.Fatalf("expected 2 published, got %d", published)
	}

	item, err := f.store.GetProposal(context.Background(), testEventID, "p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.PublicationStatus != entities.PublicationPublished {
		t.Fatalf("expected published, got %s", item.PublicationStatus)
	}
	if item.ConfirmationStatus == nil || *item.ConfirmationStatus != entities.ConfirmationPending {
		t.Fatalf("expected pending confirmation, got %+v", item.ConfirmationStatus)
	}

	sent := f.notifier.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected one notification per proposal, got %d", len(sent))
	}
	for _, notification := range sent {
		if notification.Template != "speakers-proposal-accepted" {
			t.Fatalf("unexpected template %q", notification.Template)
		}
	}
	if len(sent[1].Recipients) != 2 && len(sent[0].Recipients) != 2 {
		t.Fatalf("expected the co-speaker proposal to address both speakers, got %+v", sent)
	}
}

func TestPublishAllToleratesNotificationFailure(t *testing.T) {
	f := newPublishFixture([]entities.Proposal{
		acceptedProposal("p1", entities.Speaker{SpeakerID: "s1", Name: "Ada", Email: "ada@example.org"}),
	})
	f.notifier.Fail = errors.New("smtp relay down")

	published, err := f.uc.PublishAll(context.Background(), testEventID, "organizer-1", entities.DeliberationAccepted, true)
	if err != nil {
		t.Fatalf("expected publication to survive delivery failure, got %v", err)
	}
	if published != 1 {
		t.Fatalf("expected 1 published, got %d", published)
	}
}

func TestPublishAllSkipsEmailsWhenDisabled(t *testing.T) {
	f := newPublishFixture([]entities.Proposal{
		acceptedProposal("p1", entities.Speaker{SpeakerID: "s1", Name: "Ada", Email: "ada@example.org"}),
	})

	if _, err := f.uc.PublishAll(context.Background(), testEventID, "organizer-1", entities.DeliberationAccepted, false); err != nil {
		t.Fatalf("publish all failed: %v", err)
	}
	if len(f.notifier.Sent()) != 0 {
		t.Fatalf("expected no emails, got %d", len(f.notifier.Sent()))
	}
}

func TestPublishAllRespectsEventGateAndCapability(t *testing.T) {
	f := newPublishFixture([]entities.Proposal{acceptedProposal("p1")})
	f.settings.DisableResultsPublication()

	_, err := f.uc.PublishAll(context.Background(), testEventID, "organizer-1", entities.DeliberationAccepted, false)
	if !errors.Is(err, domainerrors.ErrForbiddenOperation) {
		t.Fatalf("expected forbidden when event disallows publication, got %v", err)
	}

	f = newPublishFixture([]entities.Proposal{acceptedProposal("p1")})
	f.access.Deny("organizer-1", "publish-event-results")
	_, err = f.uc.PublishAll(context.Background(), testEventID, "organizer-1", entities.DeliberationAccepted, false)
	if !errors.Is(err, domainerrors.ErrForbiddenOperation) {
		t.Fatalf("expected forbidden without capability, got %v", err)
	}
}

func TestPublishSingleRejectedProposalSendsRejectionTemplate(t *testing.T) {
	f := newPublishFixture([]entities.Proposal{
		seedProposal("p1", func(p *entities.Proposal) {
			p.DeliberationStatus = entities.DeliberationRejected
			p.Speakers = []entities.Speaker{{SpeakerID: "s1", Name: "Ada", Email: "ada@example.org"}}
		}),
	})

	if err := f.uc.Publish(context.Background(), testEventID, "organizer-1", "p1", true); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	item, err := f.store.GetProposal(context.Background(), testEventID, "p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.PublicationStatus != entities.PublicationPublished || item.ConfirmationStatus != nil {
		t.Fatalf("expected published rejection without confirmation, got %+v", item)
	}

	sent := f.notifier.Sent()
	if len(sent) != 1 || sent[0].Template != "speakers-proposal-rejected" {
		t.Fatalf("expected rejection template, got %+v", sent)
	}
}

func TestPublishSingleMissesReadAsNotFound(t *testing.T) {
	archivedAt := testNow.Add(-time.Hour)
	f := newPublishFixture([]entities.Proposal{
		seedProposal("pending", nil),
		seedProposal("archived", func(p *entities.Proposal) {
			p.DeliberationStatus = entities.DeliberationAccepted
			p.ArchivedAt = &archivedAt
		}),
		seedProposal("published", func(p *entities.Proposal) {
			p.DeliberationStatus = entities.DeliberationAccepted
			p.PublicationStatus = entities.PublicationPublished
		}),
	})

	for _, id := range []string{"pending", "archived", "published", "missing"} {
		err := f.uc.Publish(context.Background(), testEventID, "organizer-1", id, false)
		if !errors.Is(err, domainerrors.ErrProposalNotFound) {
			t.Fatalf("proposal %q: expected not found, got %v", id, err)
		}
	}
}

func TestStatisticsFoldsTriadGroups(t *testing.T) {
	pending := entities.ConfirmationPending
	confirmed := entities.ConfirmationConfirmed
	declined := entities.ConfirmationDeclined
	f := newPublishFixture([]entities.Proposal{
		seedProposal("p1", nil),
		seedProposal("p2", func(p *entities.Proposal) {
			p.DeliberationStatus = entities.DeliberationAccepted
		}),
		seedProposal("p3", func(p *entities.Proposal) {
			p.DeliberationStatus = entities.DeliberationAccepted
			p.PublicationStatus = entities.PublicationPublished
			p.ConfirmationStatus = &pending
		}),
		seedProposal("p4", func(p *entities.Proposal) {
			p.DeliberationStatus = entities.DeliberationAccepted
			p.PublicationStatus = entities.PublicationPublished
			p.ConfirmationStatus = &confirmed
		}),
		seedProposal("p5", func(p *entities.Proposal) {
			p.DeliberationStatus = entities.DeliberationAccepted
			p.PublicationStatus = entities.PublicationPublished
			p.ConfirmationStatus = &declined
		}),
		seedProposal("p6", func(p *entities.Proposal) {
			p.DeliberationStatus = entities.DeliberationRejected
			p.PublicationStatus = entities.PublicationPublished
		}),
		seedProposal("p7", func(p *entities.Proposal) {
			p.IsDraft = true
		}),
	})

	stats, err := f.uc.Statistics(context.Background(), testEventID, "organizer-1")
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.Deliberation.Total != 6 {
		t.Fatalf("expected drafts excluded from total, got %d", stats.Deliberation.Total)
	}
	if stats.Deliberation.Pending != 1 || stats.Deliberation.Accepted != 4 || stats.Deliberation.Rejected != 1 {
		t.Fatalf("unexpected deliberation split %+v", stats.Deliberation)
	}
	if stats.Accepted.Published != 3 || stats.Accepted.NotPublished != 1 {
		t.Fatalf("unexpected accepted publication split %+v", stats.Accepted)
	}
	if stats.Rejected.Published != 1 || stats.Rejected.NotPublished != 0 {
		t.Fatalf("unexpected rejected publication split %+v", stats.Rejected)
	}
	if stats.Confirmations.Pending != 1 || stats.Confirmations.Confirmed != 1 || stats.Confirmations.Declined != 1 {
		t.Fatalf("unexpected confirmations %+v", stats.Confirmations)
	}
}
