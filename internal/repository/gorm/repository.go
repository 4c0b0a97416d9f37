package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"licitaradar/internal/models"
	"licitaradar/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Notices ----------------------------------------------------------------

// UpsertNotice keys on the control number: an existing row is updated in
// place (keeping its ID and Complete flag), a new one is inserted. The
// conflict clause keeps this idempotent when the poller and a sync run race
// on the same control number.
func (s *Store) UpsertNotice(ctx context.Context, item *models.Notice) (uint64, error) {
	if s == nil || s.db == nil || item == nil {
		return 0, nil
	}
	cn := strings.TrimSpace(item.ControlNumber)
	if cn == "" {
		return 0, errors.New("control number is required")
	}
	item.ControlNumber = cn

	var existing models.Notice
	err := s.db.WithContext(ctx).
		Where("control_number = ?", cn).
		First(&existing).Error
	switch {
	case err == nil:
		item.ID = existing.ID
		item.Complete = existing.Complete
		updates := map[string]any{
			"category_code":      item.CategoryCode,
			"entity_name":        item.EntityName,
			"entity_cnpj":        item.EntityCNPJ,
			"published_at":       item.PublishedAt,
			"proposal_opens_at":  item.ProposalOpensAt,
			"proposal_closes_at": item.ProposalClosesAt,
			"estimated_value":    item.EstimatedValue,
			"object_description": item.ObjectDescription,
			"state":              item.State,
			"municipality":       item.Municipality,
			"last_seen_at":       item.LastSeenAt,
			"raw_json":           item.RawJSON,
		}
		if err := s.db.WithContext(ctx).
			Model(&models.Notice{}).
			Where("id = ?", existing.ID).
			Updates(updates).Error; err != nil {
			return 0, err
		}
		return existing.ID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "control_number"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"category_code",
				"entity_name",
				"entity_cnpj",
				"published_at",
				"proposal_opens_at",
				"proposal_closes_at",
				"estimated_value",
				"object_description",
				"state",
				"municipality",
				"last_seen_at",
				"raw_json",
			}),
		}).Create(item).Error; err != nil {
			return 0, err
		}
		if item.ID == 0 {
			// Conflict path: another writer inserted first.
			if err := s.db.WithContext(ctx).
				Where("control_number = ?", cn).
				First(item).Error; err != nil {
				return 0, err
			}
		}
		return item.ID, nil
	default:
		return 0, err
	}
}

func (s *Store) GetNoticeByControlNumber(ctx context.Context, controlNumber string) (*models.Notice, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	controlNumber = strings.TrimSpace(controlNumber)
	if controlNumber == "" {
		return nil, nil
	}
	var item models.Notice
	err := s.db.WithContext(ctx).
		Where("control_number = ?", controlNumber).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CompleteControlNumbers(ctx context.Context, controlNumbers []string) (map[string]bool, error) {
	out := map[string]bool{}
	if s == nil || s.db == nil || len(controlNumbers) == 0 {
		return out, nil
	}
	var rows []models.Notice
	if err := s.db.WithContext(ctx).
		Select("control_number", "complete").
		Where("control_number IN ?", controlNumbers).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ControlNumber] = row.Complete
	}
	return out, nil
}

func (s *Store) MarkNoticeComplete(ctx context.Context, noticeID uint64, historyJSON []byte) error {
	if s == nil || s.db == nil || noticeID == 0 {
		return nil
	}
	updates := map[string]any{"complete": true}
	if len(historyJSON) > 0 {
		updates["history_json"] = historyJSON
	}
	return s.db.WithContext(ctx).
		Model(&models.Notice{}).
		Where("id = ?", noticeID).
		Updates(updates).Error
}

// ReplaceNoticeChildren swaps the full child set in one transaction:
// delete-then-insert, because upstream enrichment is authoritative and no
// local edits survive a notice's own sub-resources.
func (s *Store) ReplaceNoticeChildren(ctx context.Context, noticeID uint64, items []models.NoticeItem, documents []models.NoticeDocument) error {
	if s == nil || s.db == nil || noticeID == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notice_id = ?", noticeID).Delete(&models.NoticeItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("notice_id = ?", noticeID).Delete(&models.NoticeDocument{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].NoticeID = noticeID
		}
		for i := range documents {
			documents[i].ID = 0
			documents[i].NoticeID = noticeID
		}
		if len(items) > 0 {
			if err := tx.CreateInBatches(items, 200).Error; err != nil {
				return err
			}
		}
		if len(documents) > 0 {
			if err := tx.CreateInBatches(documents, 200).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListNotices(ctx context.Context, params repository.ListNoticesParams) ([]models.Notice, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.applyNoticeFilters(s.db.WithContext(ctx).Model(&models.Notice{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "published_at")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Notice
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountNotices(ctx context.Context, params repository.ListNoticesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	query := s.applyNoticeFilters(s.db.WithContext(ctx).Model(&models.Notice{}), params)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) applyNoticeFilters(query *gorm.DB, params repository.ListNoticesParams) *gorm.DB {
	if len(params.States) > 0 {
		query = query.Where("state IN ?", params.States)
	}
	if params.PublishedSince != nil && !params.PublishedSince.IsZero() {
		query = query.Where("published_at >= ?", *params.PublishedSince)
	}
	if params.PublishedUntil != nil && !params.PublishedUntil.IsZero() {
		query = query.Where("published_at <= ?", *params.PublishedUntil)
	}
	if params.MinValue != nil {
		query = query.Where("estimated_value >= ?", *params.MinValue)
	}
	if params.MaxValue != nil {
		query = query.Where("estimated_value <= ?", *params.MaxValue)
	}
	if params.Keyword != nil && strings.TrimSpace(*params.Keyword) != "" {
		kw := "%" + strings.TrimSpace(*params.Keyword) + "%"
		query = query.Where("object_description ILIKE ?", kw)
	}
	if params.Complete != nil {
		query = query.Where("complete = ?", *params.Complete)
	}
	return query
}

func (s *Store) ListNoticeItems(ctx context.Context, noticeID uint64) ([]models.NoticeItem, error) {
	if s == nil || s.db == nil || noticeID == 0 {
		return nil, nil
	}
	var items []models.NoticeItem
	if err := s.db.WithContext(ctx).
		Where("notice_id = ?", noticeID).
		Order("sequence asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListNoticeDocuments(ctx context.Context, noticeID uint64) ([]models.NoticeDocument, error) {
	if s == nil || s.db == nil || noticeID == 0 {
		return nil, nil
	}
	var docs []models.NoticeDocument
	if err := s.db.WithContext(ctx).
		Where("notice_id = ?", noticeID).
		Order("id asc").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// --- Alert subscriptions ----------------------------------------------------

func (s *Store) UpsertSubscription(ctx context.Context, item *models.AlertSubscription) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ID == 0 {
		return s.db.WithContext(ctx).Create(item).Error
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) ListActiveSubscriptions(ctx context.Context) ([]models.AlertSubscription, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.AlertSubscription
	if err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListSubscriptions(ctx context.Context, limit, offset int) ([]models.AlertSubscription, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.AlertSubscription
	if err := s.db.WithContext(ctx).
		Order("id asc").
		Limit(normalizeLimit(limit, 100)).
		Offset(normalizeOffset(offset)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateSubscriptionLastChecked(ctx context.Context, id uint64, checkedAt time.Time) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.AlertSubscription{}).
		Where("id = ?", id).
		Update("last_checked", checkedAt).Error
}

// --- Sync run log -----------------------------------------------------------

func (s *Store) InsertSyncRun(ctx context.Context, item *models.SyncRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) LatestSyncRun(ctx context.Context) (*models.SyncRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SyncRun
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSyncRuns(ctx context.Context, limit, offset int) ([]models.SyncRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SyncRun
	if err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(normalizeLimit(limit, 50)).
		Offset(normalizeOffset(offset)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 || limit > 1000 {
		return fallback
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
