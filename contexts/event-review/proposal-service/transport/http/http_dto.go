package http

import (
	"net/url"
	"strconv"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProposalsQuery is the flat, URL-shaped filter specification as reviewers
// type it. Unknown tokens degrade to defaults downstream.
type ProposalsQuery struct {
	Query   string `json:"query,omitempty"`
	Sort    string `json:"sort,omitempty"`
	Reviews string `json:"reviews,omitempty"`
	Status  string `json:"status,omitempty"`

	FormatID   string `json:"formats,omitempty"`
	CategoryID string `json:"categories,omitempty"`
	TagID      string `json:"tags,omitempty"`
	SpeakerID  string `json:"speakers,omitempty"`

	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// ParseProposalsQuery reads the filter specification from query parameters.
// Non-numeric page values fall back to the first page.
func ParseProposalsQuery(values url.Values) ProposalsQuery {
	page, _ := strconv.Atoi(values.Get("page"))
	pageSize, _ := strconv.Atoi(values.Get("page_size"))
	return ProposalsQuery{
		Query:      values.Get("query"),
		Sort:       values.Get("sort"),
		Reviews:    values.Get("reviews"),
		Status:     values.Get("status"),
		FormatID:   values.Get("formats"),
		CategoryID: values.Get("categories"),
		TagID:      values.Get("tags"),
		SpeakerID:  values.Get("speakers"),
		Page:       page,
		PageSize:   pageSize,
	}
}

type UpdateStatusRequest struct {
	ProposalIDs  []string `json:"proposal_ids"`
	Deliberation string   `json:"deliberation_status,omitempty"`
	Confirmation string   `json:"confirmation_status,omitempty"`
}

type UpdateAllStatusRequest struct {
	Filters      ProposalsQuery `json:"filters"`
	Deliberation string         `json:"deliberation_status"`
}

type ProposalIDsRequest struct {
	ProposalIDs []string `json:"proposal_ids"`
}

type UpdatedCountResponse struct {
	Updated int `json:"updated"`
}

type PublishRequest struct {
	SendEmails bool `json:"send_emails"`
}

type PublishAllRequest struct {
	Status     string `json:"status"`
	SendEmails bool   `json:"send_emails"`
}

type PublishedCountResponse struct {
	Published int `json:"published"`
}

type SaveReviewRequest struct {
	Feeling string   `json:"feeling"`
	Note    *float64 `json:"note,omitempty"`
}

type SpeakerDTO struct {
	SpeakerID string `json:"speaker_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
}

type ReviewDTO struct {
	UserID  string   `json:"user_id"`
	Feeling string   `json:"feeling"`
	Note    *float64 `json:"note,omitempty"`
}

type ProposalDTO struct {
	ProposalID     string `json:"proposal_id"`
	ProposalNumber *int   `json:"proposal_number,omitempty"`
	Title          string `json:"title"`
	Abstract       string `json:"abstract,omitempty"`
	Level          string `json:"level,omitempty"`

	DeliberationStatus string `json:"deliberation_status"`
	PublicationStatus  string `json:"publication_status"`
	ConfirmationStatus string `json:"confirmation_status,omitempty"`
	ArchivedAt         string `json:"archived_at,omitempty"`

	FormatIDs   []string `json:"format_ids,omitempty"`
	CategoryIDs []string `json:"category_ids,omitempty"`
	TagIDs      []string `json:"tag_ids,omitempty"`

	Speakers []SpeakerDTO `json:"speakers,omitempty"`
	Reviews  []ReviewDTO  `json:"reviews,omitempty"`

	AverageRate   *float64 `json:"average_rate,omitempty"`
	CommentsCount int      `json:"comments_count"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type PaginationDTO struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type SearchStatisticsDTO struct {
	Total    int `json:"total"`
	Reviewed int `json:"reviewed"`
}

type SearchProposalsResponse struct {
	Items      []ProposalDTO       `json:"items"`
	Pagination PaginationDTO       `json:"pagination"`
	Statistics SearchStatisticsDTO `json:"statistics"`
}

type GetProposalResponse struct {
	Proposal ProposalDTO `json:"proposal"`
}

type ResultsStatisticsResponse struct {
	Deliberation struct {
		Total    int `json:"total"`
		Pending  int `json:"pending"`
		Accepted int `json:"accepted"`
		Rejected int `json:"rejected"`
	} `json:"deliberation"`
	Accepted struct {
		Published    int `json:"published"`
		NotPublished int `json:"not_published"`
	} `json:"accepted"`
	Rejected struct {
		Published    int `json:"published"`
		NotPublished int `json:"not_published"`
	} `json:"rejected"`
	Confirmations struct {
		Pending   int `json:"pending"`
		Confirmed int `json:"confirmed"`
		Declined  int `json:"declined"`
	} `json:"confirmations"`
}
