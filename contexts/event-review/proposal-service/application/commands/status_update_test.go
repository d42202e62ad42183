package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"papercall/contexts/event-review/proposal-service/adapters/memory"
	"papercall/contexts/event-review/proposal-service/application/queries"
	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
)

const testEventID = "event-1"

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, time.April, 10, 9, 0, 0, 0, time.UTC)

func notePtr(v float64) *float64 { return &v }

func seedProposal(id string, mutate func(*entities.Proposal)) entities.Proposal {
	createdAt := testNow.Add(-24 * time.Hour)
	item := entities.Proposal{
		ProposalID:         id,
		EventID:            testEventID,
		Title:              "Talk " + id,
		DeliberationStatus: entities.DeliberationPending,
		PublicationStatus:  entities.PublicationNotPublished,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
	if mutate != nil {
		mutate(&item)
	}
	return item
}

type statusFixture struct {
	store  *memory.Store
	access *memory.AccessChecker
	uc     StatusUseCase
}

func newStatusFixture(seed []entities.Proposal) statusFixture {
	store := memory.NewStore(seed)
	access := memory.NewAccessChecker()
	search := queries.SearchUseCase{
		Repository:      store,
		Access:          access,
		DisplaySpeakers: true,
		DisplayReviews:  true,
	}
	return statusFixture{
		store:  store,
		access: access,
		uc: StatusUseCase{
			Repository: store,
			Access:     access,
			Search:     search,
			Clock:      fixedClock{now: testNow},
		},
	}
}

func deliberationPtr(s entities.DeliberationStatus) *entities.DeliberationStatus { return &s }

func confirmationPtr(s entities.ConfirmationStatus) *entities.ConfirmationStatus { return &s }

func TestUpdateDeliberationSkipsUnchangedRows(t *testing.T) {
	f := newStatusFixture([]entities.Proposal{
		seedProposal("p1", nil),
		seedProposal("p2", nil),
	})

	cmd := UpdateStatusCommand{
		EventID:      testEventID,
		ActorID:      "organizer-1",
		ProposalIDs:  []string{"p1", "p2"},
		Deliberation: deliberationPtr(entities.DeliberationAccepted),
	}
	changed, err := f.uc.Update(context.Background(), cmd)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if changed != 2 {
		t.Fatalf("expected 2 changed rows, got %d", changed)
	}

	changed, err = f.uc.Update(context.Background(), cmd)
	if err != nil {
		t.Fatalf("repeat update failed: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected idempotent repeat, got %d changed", changed)
	}
}

func TestUpdateDeliberationResetsPublicationAndConfirmation(t *testing.T) {
	pending := entities.ConfirmationPending
	f := newStatusFixture([]entities.Proposal{
		seedProposal("p1", func(p *entities.Proposal) {
			p.DeliberationStatus = entities.DeliberationAccepted
			p.PublicationStatus = entities.PublicationPublished
			p.ConfirmationStatus = &pending
		}),
	})

	changed, err := f.uc.Update(context.Background(), UpdateStatusCommand{
		EventID:      testEventID,
		ActorID:      "organizer-1",
		ProposalIDs:  []string{"p1"},
		Deliberation: deliberationPtr(entities.DeliberationPending),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected one changed row, got %d", changed)
	}

	item, err := f.store.GetProposal(context.Background(), testEventID, "p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.PublicationStatus != entities.PublicationNotPublished || item.ConfirmationStatus != nil {
		t.Fatalf("expected announcement withdrawn, got %+v", item)
	}
}

func TestUpdateConfirmationForcesAcceptedPublished(t *testing.T) {
	f := newStatusFixture([]entities.Proposal{
		seedProposal("p1", nil),
	})

	changed, err := f.uc.Update(context.Background(), UpdateStatusCommand{
		EventID:      testEventID,
		ActorID:      "organizer-1",
		ProposalIDs:  []string{"p1"},
		Confirmation: confirmationPtr(entities.ConfirmationConfirmed),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected one changed row, got %d", changed)
	}

	item, err := f.store.GetProposal(context.Background(), testEventID, "p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.DeliberationStatus != entities.DeliberationAccepted ||
		item.PublicationStatus != entities.PublicationPublished ||
		item.ConfirmationStatus == nil ||
		*item.ConfirmationStatus != entities.ConfirmationConfirmed {
		t.Fatalf("expected forced triad, got %+v", item)
	}
}

func TestUpdateFreezesArchivedProposals(t *testing.T) {
	archivedAt := testNow.Add(-time.Hour)
	f := newStatusFixture([]entities.Proposal{
		seedProposal("p1", func(p *entities.Proposal) { p.ArchivedAt = &archivedAt }),
	})

	changed, err := f.uc.Update(context.Background(), UpdateStatusCommand{
		EventID:      testEventID,
		ActorID:      "organizer-1",
		ProposalIDs:  []string{"p1"},
		Deliberation: deliberationPtr(entities.DeliberationAccepted),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected archived row untouched, got %d changed", changed)
	}
}

func TestUpdateRejectsUnknownStatusToken(t *testing.T) {
	f := newStatusFixture([]entities.Proposal{seedProposal("p1", nil)})

	_, err := f.uc.Update(context.Background(), UpdateStatusCommand{
		EventID:      testEventID,
		ActorID:      "organizer-1",
		ProposalIDs:  []string{"p1"},
		Deliberation: deliberationPtr(entities.DeliberationStatus("MAYBE")),
	})
	if !errors.Is(err, domainerrors.ErrInvalidStatusInput) {
		t.Fatalf("expected invalid status input, got %v", err)
	}
}

func TestUpdateRequiresStatusCapability(t *testing.T) {
	f := newStatusFixture([]entities.Proposal{seedProposal("p1", nil)})
	f.access.Deny("organizer-1", "change-proposal-status")

	_, err := f.uc.Update(context.Background(), UpdateStatusCommand{
		EventID:      testEventID,
		ActorID:      "organizer-1",
		ProposalIDs:  []string{"p1"},
		Deliberation: deliberationPtr(entities.DeliberationAccepted),
	})
	if !errors.Is(err, domainerrors.ErrForbiddenOperation) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateWithoutTargetStatusIsNoOp(t *testing.T) {
	f := newStatusFixture([]entities.Proposal{seedProposal("p1", nil)})

	changed, err := f.uc.Update(context.Background(), UpdateStatusCommand{
		EventID:     testEventID,
		ActorID:     "organizer-1",
		ProposalIDs: []string{"p1"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected no-op, got %d changed", changed)
	}
}

func TestUpdateAllTargetsFilteredProposals(t *testing.T) {
	f := newStatusFixture([]entities.Proposal{
		seedProposal("p1", func(p *entities.Proposal) { p.Title = "Go Generics" }),
		seedProposal("p2", func(p *entities.Proposal) { p.Title = "Rust Macros" }),
	})

	changed, err := f.uc.UpdateAll(context.Background(), queries.SearchQuery{
		EventID: testEventID,
		UserID:  "organizer-1",
		Query:   "go",
	}, entities.DeliberationRejected)
	if err != nil {
		t.Fatalf("update all failed: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected only the matching proposal, got %d", changed)
	}

	untouched, err := f.store.GetProposal(context.Background(), testEventID, "p2")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if untouched.DeliberationStatus != entities.DeliberationPending {
		t.Fatalf("expected p2 untouched, got %s", untouched.DeliberationStatus)
	}
}

func TestArchiveAndRestoreAreIdempotentToggles(t *testing.T) {
	f := newStatusFixture([]entities.Proposal{seedProposal("p1", nil)})

	changed, err := f.uc.Archive(context.Background(), testEventID, "organizer-1", []string{"p1"})
	if err != nil || changed != 1 {
		t.Fatalf("archive: changed=%d err=%v", changed, err)
	}
	changed, err = f.uc.Archive(context.Background(), testEventID, "organizer-1", []string{"p1"})
	if err != nil || changed != 0 {
		t.Fatalf("repeat archive: changed=%d err=%v", changed, err)
	}

	changed, err = f.uc.Restore(context.Background(), testEventID, "organizer-1", []string{"p1"})
	if err != nil || changed != 1 {
		t.Fatalf("restore: changed=%d err=%v", changed, err)
	}
	changed, err = f.uc.Restore(context.Background(), testEventID, "organizer-1", []string{"p1"})
	if err != nil || changed != 0 {
		t.Fatalf("repeat restore: changed=%d err=%v", changed, err)
	}
}
