package services

import (
	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
)

// The status triad obeys one joint rule set, applied here and nowhere else:
// a confirmation only exists on an accepted, published proposal, and any new
// deliberation decision withdraws a previous announcement.

// ApplyDeliberation records a new deliberation decision and resets the
// publication and confirmation fields that depended on the previous one.
func ApplyDeliberation(proposal *entities.Proposal, status entities.DeliberationStatus) {
	proposal.DeliberationStatus = status
	proposal.PublicationStatus = entities.PublicationNotPublished
	proposal.ConfirmationStatus = nil
}

// ApplyConfirmation records a speaker response. The response implies the
// proposal was accepted and announced, so both are forced rather than
// validated.
func ApplyConfirmation(proposal *entities.Proposal, status entities.ConfirmationStatus) {
	proposal.DeliberationStatus = entities.DeliberationAccepted
	proposal.PublicationStatus = entities.PublicationPublished
	confirmation := status
	proposal.ConfirmationStatus = &confirmation
}

// ApplyPublication announces the current decision. Accepted proposals start
// waiting for the speaker's response; rejected ones carry no confirmation.
func ApplyPublication(proposal *entities.Proposal) {
	proposal.PublicationStatus = entities.PublicationPublished
	if proposal.DeliberationStatus == entities.DeliberationAccepted {
		confirmation := entities.ConfirmationPending
		proposal.ConfirmationStatus = &confirmation
	}
}

// ValidateTriad reports whether the triad fields are jointly consistent.
func ValidateTriad(proposal entities.Proposal) error {
	if proposal.ConfirmationStatus == nil {
		return nil
	}
	if proposal.DeliberationStatus != entities.DeliberationAccepted ||
		proposal.PublicationStatus != entities.PublicationPublished {
		return domainerrors.ErrInvalidStatusInput
	}
	return nil
}
