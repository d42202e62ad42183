package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"papercall/contexts/event-review/proposal-service/domain/entities"
	domainerrors "papercall/contexts/event-review/proposal-service/domain/errors"
	"papercall/contexts/event-review/proposal-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetProposal(ctx context.Context, eventID, proposalID string) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Where("is_draft = FALSE").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, err
	}

	items := []entities.Proposal{row.toEntity()}
	if err := r.attachMemberships(ctx, items); err != nil {
		return entities.Proposal{}, err
	}
	if err := r.attachSpeakers(ctx, items); err != nil {
		return entities.Proposal{}, err
	}
	if err := r.attachReviews(ctx, items); err != nil {
		return entities.Proposal{}, err
	}
	return items[0], nil
}

func (r *Repository) CountProposals(ctx context.Context, eventID string, filters ports.ProposalsFilters) (int, error) {
	var count int64
	err := r.filtered(ctx, eventID, filters).Count(&count).Error
	return int(count), err
}

func (r *Repository) CountReviewedProposals(ctx context.Context, eventID string, filters ports.ProposalsFilters) (int, error) {
	var count int64
	err := r.filtered(ctx, eventID, filters).
		Where("EXISTS (SELECT 1 FROM reviews WHERE reviews.proposal_id = proposals.proposal_id AND reviews.user_id = ?)", filters.UserID).
		Count(&count).
		Error
	return int(count), err
}

func (r *Repository) SearchProposals(
	ctx context.Context,
	eventID string,
	filters ports.ProposalsFilters,
	page ports.Page,
	options ports.SearchOptions,
) ([]entities.Proposal, error) {
	var rows []proposalModel
	tx := applyOrder(r.filtered(ctx, eventID, filters), filters.Sort)
	err := tx.
		Offset((page.Number - 1) * page.Size).
		Limit(page.Size).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	if err := r.attachMemberships(ctx, items); err != nil {
		return nil, err
	}
	if options.IncludeSpeakers {
		if err := r.attachSpeakers(ctx, items); err != nil {
			return nil, err
		}
	}
	if options.IncludeReviews {
		if err := r.attachReviews(ctx, items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *Repository) ListProposalIDs(ctx context.Context, eventID string, filters ports.ProposalsFilters) ([]string, error) {
	ids := make([]string, 0)
	err := applyOrder(r.filtered(ctx, eventID, filters), filters.Sort).
		Pluck("proposals.proposal_id", &ids).
		Error
	return ids, err
}

func (r *Repository) UpdateDeliberation(
	ctx context.Context,
	eventID string,
	proposalIDs []string,
	status entities.DeliberationStatus,
	now time.Time,
) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("event_id = ?", eventID).
		Where("proposal_id IN ?", proposalIDs).
		Where("archived_at IS NULL").
		Where("deliberation_status <> ?", string(status)).
		Updates(map[string]any{
			"deliberation_status": string(status),
			"publication_status":  string(entities.PublicationNotPublished),
			"confirmation_status": nil,
			"updated_at":          now.UTC(),
		})
	return int(result.RowsAffected), result.Error
}

func (r *Repository) ForceConfirmation(
	ctx context.Context,
	eventID string,
	proposalIDs []string,
	status entities.ConfirmationStatus,
	now time.Time,
) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("event_id = ?", eventID).
		Where("proposal_id IN ?", proposalIDs).
		Where("archived_at IS NULL").
		Updates(map[string]any{
			"deliberation_status": string(entities.DeliberationAccepted),
			"publication_status":  string(entities.PublicationPublished),
			"confirmation_status": string(status),
			"updated_at":          now.UTC(),
		})
	return int(result.RowsAffected), result.Error
}

func (r *Repository) ArchiveProposals(ctx context.Context, eventID string, proposalIDs []string, now time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("event_id = ?", eventID).
		Where("proposal_id IN ?", proposalIDs).
		Where("archived_at IS NULL").
		Updates(map[string]any{
			"archived_at": now.UTC(),
			"updated_at":  now.UTC(),
		})
	return int(result.RowsAffected), result.Error
}

func (r *Repository) RestoreProposals(ctx context.Context, eventID string, proposalIDs []string, now time.Time) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("event_id = ?", eventID).
		Where("proposal_id IN ?", proposalIDs).
		Where("archived_at IS NOT NULL").
		Updates(map[string]any{
			"archived_at": nil,
			"updated_at":  now.UTC(),
		})
	return int(result.RowsAffected), result.Error
}

func (r *Repository) ListPublishable(ctx context.Context, eventID string, decision entities.DeliberationStatus) ([]entities.Proposal, error) {
	var rows []proposalModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("is_draft = FALSE").
		Where("archived_at IS NULL").
		Where("deliberation_status = ?", string(decision)).
		Where("publication_status = ?", string(entities.PublicationNotPublished)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	if err := r.attachSpeakers(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) GetPublishable(ctx context.Context, eventID, proposalID string) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Where("is_draft = FALSE").
		Where("archived_at IS NULL").
		Where("deliberation_status IN ?", []string{
			string(entities.DeliberationAccepted),
			string(entities.DeliberationRejected),
		}).
		Where("publication_status = ?", string(entities.PublicationNotPublished)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, err
	}

	items := []entities.Proposal{row.toEntity()}
	if err := r.attachSpeakers(ctx, items); err != nil {
		return entities.Proposal{}, err
	}
	return items[0], nil
}

func (r *Repository) MarkPublished(
	ctx context.Context,
	eventID string,
	proposalIDs []string,
	decision entities.DeliberationStatus,
	now time.Time,
) (int, error) {
	updates := map[string]any{
		"publication_status": string(entities.PublicationPublished),
		"updated_at":         now.UTC(),
	}
	if decision == entities.DeliberationAccepted {
		updates["confirmation_status"] = string(entities.ConfirmationPending)
	}
	result := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("event_id = ?", eventID).
		Where("proposal_id IN ?", proposalIDs).
		Where("is_draft = FALSE").
		Where("archived_at IS NULL").
		Where("deliberation_status = ?", string(decision)).
		Where("publication_status = ?", string(entities.PublicationNotPublished)).
		Updates(updates)
	return int(result.RowsAffected), result.Error
}

func (r *Repository) CountByStatus(ctx context.Context, eventID string) ([]ports.StatusGroupCount, error) {
	var rows []statusGroupRow
	err := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Select("deliberation_status, publication_status, confirmation_status, COUNT(*) AS total").
		Where("event_id = ?", eventID).
		Where("is_draft = FALSE").
		Where("archived_at IS NULL").
		Group("deliberation_status, publication_status, confirmation_status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	groups := make([]ports.StatusGroupCount, 0, len(rows))
	for _, row := range rows {
		group := ports.StatusGroupCount{
			Deliberation: entities.DeliberationStatus(row.DeliberationStatus),
			Publication:  entities.PublicationStatus(row.PublicationStatus),
			Count:        row.Total,
		}
		if row.ConfirmationStatus != nil {
			confirmation := entities.ConfirmationStatus(*row.ConfirmationStatus)
			group.Confirmation = &confirmation
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (r *Repository) SaveReview(ctx context.Context, review entities.Review) error {
	row := reviewModelFromEntity(review)
	err := r.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&reviewModel{}).
		Where("proposal_id = ?", row.ProposalID).
		Where("user_id = ?", row.UserID).
		Updates(map[string]any{
			"feeling":    row.Feeling,
			"note":       row.Note,
			"updated_at": row.UpdatedAt,
		}).
		Error
}

func (r *Repository) DeleteReview(ctx context.Context, proposalID, userID string) error {
	return r.db.WithContext(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Delete(&reviewModel{}).
		Error
}

func (r *Repository) ListReviews(ctx context.Context, proposalID string) ([]entities.Review, error) {
	var rows []reviewModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Order("user_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Review, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpdateAvgRate(ctx context.Context, proposalID string, average *float64) error {
	return r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Update("avg_rate_for_sort", average).
		Error
}

// filtered builds the shared WHERE chain for every search-shaped read. All
// dimensions are conjunctive; the text clause alone is an internal OR over
// title, speaker names and the proposal number.
func (r *Repository) filtered(ctx context.Context, eventID string, filters ports.ProposalsFilters) *gorm.DB {
	tx := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("event_id = ?", eventID).
		Where("is_draft = FALSE")

	if filters.Status == ports.StatusArchived {
		tx = tx.Where("archived_at IS NOT NULL")
	} else {
		tx = tx.Where("archived_at IS NULL")
	}

	switch filters.Status {
	case ports.StatusPending:
		tx = tx.Where("deliberation_status = ?", string(entities.DeliberationPending))
	case ports.StatusAccepted:
		tx = tx.Where("deliberation_status = ?", string(entities.DeliberationAccepted))
	case ports.StatusRejected:
		tx = tx.Where("deliberation_status = ?", string(entities.DeliberationRejected))
	case ports.StatusNotAnswered:
		tx = tx.
			Where("deliberation_status = ?", string(entities.DeliberationAccepted)).
			Where("publication_status = ?", string(entities.PublicationPublished)).
			Where("confirmation_status = ?", string(entities.ConfirmationPending))
	case ports.StatusConfirmed:
		tx = tx.Where("confirmation_status = ?", string(entities.ConfirmationConfirmed))
	case ports.StatusDeclined:
		tx = tx.Where("confirmation_status = ?", string(entities.ConfirmationDeclined))
	}

	if filters.Text != "" || filters.ProposalNumber != nil {
		clauses := make([]string, 0, 3)
		args := make([]any, 0, 3)
		if filters.Text != "" {
			clauses = append(clauses, "proposals.title ILIKE ?")
			args = append(args, "%"+filters.Text+"%")
			if filters.SearchSpeakers {
				clauses = append(clauses,
					"EXISTS (SELECT 1 FROM proposals_speakers ps JOIN speakers s ON s.speaker_id = ps.speaker_id WHERE ps.proposal_id = proposals.proposal_id AND s.name ILIKE ?)")
				args = append(args, "%"+filters.Text+"%")
			}
		}
		if filters.ProposalNumber != nil {
			clauses = append(clauses, "proposals.proposal_number = ?")
			args = append(args, *filters.ProposalNumber)
		}
		tx = tx.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	if filters.FormatID != "" {
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM proposals_formats pf WHERE pf.proposal_id = proposals.proposal_id AND pf.format_id = ?)",
			filters.FormatID,
		)
	}
	if filters.CategoryID != "" {
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM proposals_categories pc WHERE pc.proposal_id = proposals.proposal_id AND pc.category_id = ?)",
			filters.CategoryID,
		)
	}
	if filters.TagID != "" {
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM proposals_tags pt WHERE pt.proposal_id = proposals.proposal_id AND pt.tag_id = ?)",
			filters.TagID,
		)
	}
	if filters.SpeakerID != "" {
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM proposals_speakers ps WHERE ps.proposal_id = proposals.proposal_id AND ps.speaker_id = ?)",
			filters.SpeakerID,
		)
	}

	switch filters.Reviews {
	case ports.ReviewsReviewed:
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM reviews WHERE reviews.proposal_id = proposals.proposal_id AND reviews.user_id = ?)",
			filters.UserID,
		)
	case ports.ReviewsNotReviewed:
		tx = tx.Where(
			"NOT EXISTS (SELECT 1 FROM reviews WHERE reviews.proposal_id = proposals.proposal_id AND reviews.user_id = ?)",
			filters.UserID,
		)
	case ports.ReviewsMyFavorites:
		tx = tx.Where(
			"EXISTS (SELECT 1 FROM reviews WHERE reviews.proposal_id = proposals.proposal_id AND reviews.user_id = ? AND reviews.feeling = ?)",
			filters.UserID,
			string(entities.FeelingPositive),
		)
	}
	return tx
}

func applyOrder(tx *gorm.DB, order ports.Sort) *gorm.DB {
	switch order {
	case ports.SortOldest:
		tx = tx.Order("proposals.created_at ASC")
	case ports.SortHighest:
		tx = tx.Order("proposals.avg_rate_for_sort DESC NULLS LAST")
	case ports.SortLowest:
		tx = tx.Order("proposals.avg_rate_for_sort ASC NULLS FIRST")
	case ports.SortMostComments:
		tx = tx.Order("proposals.comments_count DESC")
	case ports.SortFewestComments:
		tx = tx.Order("proposals.comments_count ASC")
	default:
		tx = tx.Order("proposals.created_at DESC")
	}
	return tx.Order("proposals.title ASC")
}

func (r *Repository) attachMemberships(ctx context.Context, items []entities.Proposal) error {
	if len(items) == 0 {
		return nil
	}
	index := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for i, item := range items {
		index[item.ProposalID] = i
		ids = append(ids, item.ProposalID)
	}

	var formats []proposalFormatModel
	if err := r.db.WithContext(ctx).Where("proposal_id IN ?", ids).Order("format_id ASC").Find(&formats).Error; err != nil {
		return err
	}
	for _, link := range formats {
		if i, ok := index[link.ProposalID]; ok {
			items[i].FormatIDs = append(items[i].FormatIDs, link.FormatID)
		}
	}

	var categories []proposalCategoryModel
	if err := r.db.WithContext(ctx).Where("proposal_id IN ?", ids).Order("category_id ASC").Find(&categories).Error; err != nil {
		return err
	}
	for _, link := range categories {
		if i, ok := index[link.ProposalID]; ok {
			items[i].CategoryIDs = append(items[i].CategoryIDs, link.CategoryID)
		}
	}

	var tags []proposalTagModel
	if err := r.db.WithContext(ctx).Where("proposal_id IN ?", ids).Order("tag_id ASC").Find(&tags).Error; err != nil {
		return err
	}
	for _, link := range tags {
		if i, ok := index[link.ProposalID]; ok {
			items[i].TagIDs = append(items[i].TagIDs, link.TagID)
		}
	}
	return nil
}

func (r *Repository) attachSpeakers(ctx context.Context, items []entities.Proposal) error {
	if len(items) == 0 {
		return nil
	}
	index := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for i, item := range items {
		index[item.ProposalID] = i
		ids = append(ids, item.ProposalID)
	}

	var rows []speakerRow
	err := r.db.WithContext(ctx).
		Table("proposals_speakers").
		Select("proposals_speakers.proposal_id, speakers.speaker_id, speakers.name, speakers.email").
		Joins("JOIN speakers ON speakers.speaker_id = proposals_speakers.speaker_id").
		Where("proposals_speakers.proposal_id IN ?", ids).
		Order("speakers.name ASC").
		Scan(&rows).
		Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		if i, ok := index[row.ProposalID]; ok {
			items[i].Speakers = append(items[i].Speakers, entities.Speaker{
				SpeakerID: row.SpeakerID,
				Name:      row.Name,
				Email:     row.Email,
			})
		}
	}
	return nil
}

func (r *Repository) attachReviews(ctx context.Context, items []entities.Proposal) error {
	if len(items) == 0 {
		return nil
	}
	index := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for i, item := range items {
		index[item.ProposalID] = i
		ids = append(ids, item.ProposalID)
	}

	var rows []reviewModel
	err := r.db.WithContext(ctx).
		Where("proposal_id IN ?", ids).
		Order("user_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return err
	}
	for _, row := range rows {
		if i, ok := index[row.ProposalID]; ok {
			items[i].Reviews = append(items[i].Reviews, row.toEntity())
		}
	}
	return nil
}

type proposalModel struct {
	ProposalID         string     `gorm:"column:proposal_id;primaryKey"`
	EventID            string     `gorm:"column:event_id"`
	ProposalNumber     *int       `gorm:"column:proposal_number"`
	Title              string     `gorm:"column:title"`
	Abstract           string     `gorm:"column:abstract"`
	References         string     `gorm:"column:refs"`
	Level              string     `gorm:"column:level"`
	Languages          []byte     `gorm:"column:languages"`
	DeliberationStatus string     `gorm:"column:deliberation_status"`
	PublicationStatus  string     `gorm:"column:publication_status"`
	ConfirmationStatus *string    `gorm:"column:confirmation_status"`
	IsDraft            bool       `gorm:"column:is_draft"`
	ArchivedAt         *time.Time `gorm:"column:archived_at"`
	AvgRateForSort     *float64   `gorm:"column:avg_rate_for_sort"`
	CommentsCount      int        `gorm:"column:comments_count"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "proposals"
}

func (m proposalModel) toEntity() entities.Proposal {
	item := entities.Proposal{
		ProposalID:         m.ProposalID,
		EventID:            m.EventID,
		ProposalNumber:     m.ProposalNumber,
		Title:              m.Title,
		Abstract:           m.Abstract,
		References:         m.References,
		Level:              m.Level,
		DeliberationStatus: entities.DeliberationStatus(m.DeliberationStatus),
		PublicationStatus:  entities.PublicationStatus(m.PublicationStatus),
		IsDraft:            m.IsDraft,
		ArchivedAt:         m.ArchivedAt,
		AvgRateForSort:     m.AvgRateForSort,
		CommentsCount:      m.CommentsCount,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.ConfirmationStatus != nil {
		confirmation := entities.ConfirmationStatus(*m.ConfirmationStatus)
		item.ConfirmationStatus = &confirmation
	}
	if len(m.Languages) > 0 {
		_ = json.Unmarshal(m.Languages, &item.Languages)
	}
	return item
}

type proposalFormatModel struct {
	ProposalID string `gorm:"column:proposal_id;primaryKey"`
	FormatID   string `gorm:"column:format_id;primaryKey"`
}

func (proposalFormatModel) TableName() string {
	return "proposals_formats"
}

type proposalCategoryModel struct {
	ProposalID string `gorm:"column:proposal_id;primaryKey"`
	CategoryID string `gorm:"column:category_id;primaryKey"`
}

func (proposalCategoryModel) TableName() string {
	return "proposals_categories"
}

type proposalTagModel struct {
	ProposalID string `gorm:"column:proposal_id;primaryKey"`
	TagID      string `gorm:"column:tag_id;primaryKey"`
}

func (proposalTagModel) TableName() string {
	return "proposals_tags"
}

type speakerRow struct {
	ProposalID string `gorm:"column:proposal_id"`
	SpeakerID  string `gorm:"column:speaker_id"`
	Name       string `gorm:"column:name"`
	Email      string `gorm:"column:email"`
}

type reviewModel struct {
	ProposalID string    `gorm:"column:proposal_id;primaryKey"`
	UserID     string    `gorm:"column:user_id;primaryKey"`
	Feeling    string    `gorm:"column:feeling"`
	Note       *float64  `gorm:"column:note"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (reviewModel) TableName() string {
	return "reviews"
}

func reviewModelFromEntity(item entities.Review) reviewModel {
	return reviewModel{
		ProposalID: strings.TrimSpace(item.ProposalID),
		UserID:     strings.TrimSpace(item.UserID),
		Feeling:    string(item.Feeling),
		Note:       item.Note,
		UpdatedAt:  item.UpdatedAt.UTC(),
	}
}

func (m reviewModel) toEntity() entities.Review {
	return entities.Review{
		ProposalID: m.ProposalID,
		UserID:     m.UserID,
		Feeling:    entities.Feeling(m.Feeling),
		Note:       m.Note,
		UpdatedAt:  m.UpdatedAt,
	}
}

type statusGroupRow struct {
	DeliberationStatus string  `gorm:"column:deliberation_status"`
	PublicationStatus  string  `gorm:"column:publication_status"`
	ConfirmationStatus *string `gorm:"column:confirmation_status"`
	Total              int     `gorm:"column:total"`
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
