package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"papercall/contexts/event-review/proposal-service/application/commands"
	"papercall/contexts/event-review/proposal-service/application/queries"
	"papercall/contexts/event-review/proposal-service/domain/entities"
	httptransport "papercall/contexts/event-review/proposal-service/transport/http"
)

type Handler struct {
	Search       queries.SearchUseCase
	Status       commands.StatusUseCase
	Publish      commands.PublishUseCase
	RateProposal commands.RateProposalUseCase
	Logger       *slog.Logger
}

func (h Handler) SearchProposalsHandler(
	ctx context.Context,
	eventID string,
	userID string,
	query httptransport.ProposalsQuery,
) (httptransport.SearchProposalsResponse, error) {
	result, err := h.Search.Search(ctx, searchQueryFromDTO(eventID, userID, query))
	if err != nil {
		return httptransport.SearchProposalsResponse{}, err
	}
	items := make([]httptransport.ProposalDTO, 0, len(result.Proposals))
	for _, item := range result.Proposals {
		items = append(items, mapProposal(item))
	}
	return httptransport.SearchProposalsResponse{
		Items: items,
		Pagination: httptransport.PaginationDTO{
			Current: result.Pagination.Current,
			Total:   result.Pagination.Total,
		},
		Statistics: httptransport.SearchStatisticsDTO{
			Total:    result.Statistics.Total,
			Reviewed: result.Statistics.Reviewed,
		},
	}, nil
}

func (h Handler) GetProposalHandler(
	ctx context.Context,
	eventID string,
	userID string,
	proposalID string,
) (httptransport.GetProposalResponse, error) {
	item, err := h.Search.GetProposal(ctx, eventID, userID, proposalID)
	if err != nil {
		return httptransport.GetProposalResponse{}, err
	}
	return httptransport.GetProposalResponse{Proposal: mapProposal(item)}, nil
}

func (h Handler) UpdateStatusHandler(
	ctx context.Context,
	eventID string,
	actorID string,
	req httptransport.UpdateStatusRequest,
) (httptransport.UpdatedCountResponse, error) {
	cmd := commands.UpdateStatusCommand{
		EventID:     eventID,
		ActorID:     actorID,
		ProposalIDs: req.ProposalIDs,
	}
	if req.Confirmation != "" {
		confirmation := entities.ConfirmationStatus(req.Confirmation)
		cmd.Confirmation = &confirmation
	} else if req.Deliberation != "" {
		deliberation := entities.DeliberationStatus(req.Deliberation)
		cmd.Deliberation = &deliberation
	}
	updated, err := h.Status.Update(ctx, cmd)
	if err != nil {
		return httptransport.UpdatedCountResponse{}, err
	}
	return httptransport.UpdatedCountResponse{Updated: updated}, nil
}

func (h Handler) UpdateAllStatusHandler(
	ctx context.Context,
	eventID string,
	actorID string,
	req httptransport.UpdateAllStatusRequest,
) (httptransport.UpdatedCountResponse, error) {
	updated, err := h.Status.UpdateAll(
		ctx,
		searchQueryFromDTO(eventID, actorID, req.Filters),
		entities.DeliberationStatus(req.Deliberation),
	)
	if err != nil {
		return httptransport.UpdatedCountResponse{}, err
	}
	return httptransport.UpdatedCountResponse{Updated: updated}, nil
}

func (h Handler) ArchiveHandler(
	ctx context.Context,
	eventID string,
	actorID string,
	req httptransport.ProposalIDsRequest,
) (httptransport.UpdatedCountResponse, error) {
	updated, err := h.Status.Archive(ctx, eventID, actorID, req.ProposalIDs)
	if err != nil {
		return httptransport.UpdatedCountResponse{}, err
	}
	return httptransport.UpdatedCountResponse{Updated: updated}, nil
}

func (h Handler) RestoreHandler(
	ctx context.Context,
	eventID string,
	actorID string,
	req httptransport.ProposalIDsRequest,
) (httptransport.UpdatedCountResponse, error) {
	updated, err := h.Status.Restore(ctx, eventID, actorID, req.ProposalIDs)
	if err != nil {
		return httptransport.UpdatedCountResponse{}, err
	}
	return httptransport.UpdatedCountResponse{Updated: updated}, nil
}

func (h Handler) ResultsStatisticsHandler(
	ctx context.Context,
	eventID string,
	actorID string,
) (httptransport.ResultsStatisticsResponse, error) {
	stats, err := h.Publish.Statistics(ctx, eventID, actorID)
	if err != nil {
		return httptransport.ResultsStatisticsResponse{}, err
	}
	var resp httptransport.ResultsStatisticsResponse
	resp.Deliberation.Total = stats.Deliberation.Total
	resp.Deliberation.Pending = stats.Deliberation.Pending
	resp.Deliberation.Accepted = stats.Deliberation.Accepted
	resp.Deliberation.Rejected = stats.Deliberation.Rejected
	resp.Accepted.Published = stats.Accepted.Published
	resp.Accepted.NotPublished = stats.Accepted.NotPublished
	resp.Rejected.Published = stats.Rejected.Published
	resp.Rejected.NotPublished = stats.Rejected.NotPublished
	resp.Confirmations.Pending = stats.Confirmations.Pending
	resp.Confirmations.Confirmed = stats.Confirmations.Confirmed
	resp.Confirmations.Declined = stats.Confirmations.Declined
	return resp, nil
}

func (h Handler) PublishAllHandler(
	ctx context.Context,
	eventID string,
	actorID string,
	req httptransport.PublishAllRequest,
) (httptransport.PublishedCountResponse, error) {
	published, err := h.Publish.PublishAll(
		ctx,
		eventID,
		actorID,
		entities.DeliberationStatus(req.Status),
		req.SendEmails,
	)
	if err != nil {
		return httptransport.PublishedCountResponse{}, err
	}
	return httptransport.PublishedCountResponse{Published: published}, nil
}

func (h Handler) PublishHandler(
	ctx context.Context,
	eventID string,
	actorID string,
	proposalID string,
	req httptransport.PublishRequest,
) error {
	return h.Publish.Publish(ctx, eventID, actorID, proposalID, req.SendEmails)
}

func (h Handler) SaveReviewHandler(
	ctx context.Context,
	eventID string,
	actorID string,
	proposalID string,
	req httptransport.SaveReviewRequest,
) error {
	return h.RateProposal.SaveReview(ctx, commands.RateProposalCommand{
		EventID:    eventID,
		ActorID:    actorID,
		ProposalID: proposalID,
		Feeling:    entities.Feeling(req.Feeling),
		Note:       req.Note,
	})
}

func (h Handler) DeleteReviewHandler(
	ctx context.Context,
	eventID string,
	actorID string,
	proposalID string,
) error {
	return h.RateProposal.DeleteReview(ctx, eventID, actorID, proposalID)
}

func searchQueryFromDTO(eventID, userID string, query httptransport.ProposalsQuery) queries.SearchQuery {
	return queries.SearchQuery{
		EventID:    eventID,
		UserID:     userID,
		Query:      query.Query,
		Sort:       query.Sort,
		Reviews:    query.Reviews,
		Status:     query.Status,
		FormatID:   query.FormatID,
		CategoryID: query.CategoryID,
		TagID:      query.TagID,
		SpeakerID:  query.SpeakerID,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
}

func mapProposal(item entities.Proposal) httptransport.ProposalDTO {
	dto := httptransport.ProposalDTO{
		ProposalID:         item.ProposalID,
		ProposalNumber:     item.ProposalNumber,
		Title:              item.Title,
		Abstract:           item.Abstract,
		Level:              item.Level,
		DeliberationStatus: string(item.DeliberationStatus),
		PublicationStatus:  string(item.PublicationStatus),
		FormatIDs:          item.FormatIDs,
		CategoryIDs:        item.CategoryIDs,
		TagIDs:             item.TagIDs,
		AverageRate:        item.AvgRateForSort,
		CommentsCount:      item.CommentsCount,
		CreatedAt:          item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.ConfirmationStatus != nil {
		dto.ConfirmationStatus = string(*item.ConfirmationStatus)
	}
	if item.ArchivedAt != nil {
		dto.ArchivedAt = item.ArchivedAt.UTC().Format(time.RFC3339)
	}
	for _, speaker := range item.Speakers {
		dto.Speakers = append(dto.Speakers, httptransport.SpeakerDTO{
			SpeakerID: speaker.SpeakerID,
			Name:      speaker.Name,
			Email:     speaker.Email,
		})
	}
	for _, review := range item.Reviews {
		dto.Reviews = append(dto.Reviews, httptransport.ReviewDTO{
			UserID:  review.UserID,
			Feeling: string(review.Feeling),
			Note:    review.Note,
		})
	}
	return dto
}
