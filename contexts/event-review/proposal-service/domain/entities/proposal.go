package entities

import "time"

type DeliberationStatus string

const (
	DeliberationPending  DeliberationStatus = "PENDING"
	DeliberationAccepted DeliberationStatus = "ACCEPTED"
	DeliberationRejected DeliberationStatus = "REJECTED"
)

func ValidDeliberationStatus(status DeliberationStatus) bool {
	return status == DeliberationPending ||
		status == DeliberationAccepted ||
		status == DeliberationRejected
}

type PublicationStatus string

const (
	PublicationNotPublished PublicationStatus = "NOT_PUBLISHED"
	PublicationPublished    PublicationStatus = "PUBLISHED"
)

type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "PENDING"
	ConfirmationConfirmed ConfirmationStatus = "CONFIRMED"
	ConfirmationDeclined  ConfirmationStatus = "DECLINED"
)

func ValidConfirmationStatus(status ConfirmationStatus) bool {
	return status == ConfirmationPending ||
		status == ConfirmationConfirmed ||
		status == ConfirmationDeclined
}

type Speaker struct {
	SpeakerID string
	Name      string
	Email     string
}

// Proposal is the talk proposal aggregate. Content fields are owned by the
// submission workflow; this module only reads them. The status triad
// (deliberation, publication, confirmation) is the mutable surface.
type Proposal struct {
	ProposalID     string
	EventID        string
	ProposalNumber *int

	Title      string
	Abstract   string
	References string
	Level      string
	Languages  []string

	FormatIDs   []string
	CategoryIDs []string
	TagIDs      []string
	Speakers    []Speaker

	DeliberationStatus DeliberationStatus
	PublicationStatus  PublicationStatus
	ConfirmationStatus *ConfirmationStatus

	IsDraft    bool
	ArchivedAt *time.Time

	// AvgRateForSort caches the review average; the review write path is its
	// only writer.
	AvgRateForSort *float64
	CommentsCount  int

	Reviews []Review

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Proposal) Archived() bool {
	return p.ArchivedAt != nil
}

func (p Proposal) SpeakerEmails() []string {
	emails := make([]string, 0, len(p.Speakers))
	for _, speaker := range p.Speakers {
		if speaker.Email != "" {
			emails = append(emails, speaker.Email)
		}
	}
	return emails
}
