package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"licitaradar/internal/models"
)

// Repository is the single persistence boundary for the pipeline. The sync
// orchestrator and the alert poller may run in separate processes; they
// coordinate only through the datastore, so every upsert here must stay safe
// under concurrent callers.
type Repository interface {
	// Notices
	UpsertNotice(ctx context.Context, item *models.Notice) (uint64, error)
	GetNoticeByControlNumber(ctx context.Context, controlNumber string) (*models.Notice, error)
	CompleteControlNumbers(ctx context.Context, controlNumbers []string) (map[string]bool, error)
	MarkNoticeComplete(ctx context.Context, noticeID uint64, historyJSON []byte) error
	ReplaceNoticeChildren(ctx context.Context, noticeID uint64, items []models.NoticeItem, documents []models.NoticeDocument) error
	ListNotices(ctx context.Context, params ListNoticesParams) ([]models.Notice, error)
	CountNotices(ctx context.Context, params ListNoticesParams) (int64, error)
	ListNoticeItems(ctx context.Context, noticeID uint64) ([]models.NoticeItem, error)
	ListNoticeDocuments(ctx context.Context, noticeID uint64) ([]models.NoticeDocument, error)

	// Alert subscriptions
	UpsertSubscription(ctx context.Context, item *models.AlertSubscription) error
	ListActiveSubscriptions(ctx context.Context) ([]models.AlertSubscription, error)
	ListSubscriptions(ctx context.Context, limit, offset int) ([]models.AlertSubscription, error)
	UpdateSubscriptionLastChecked(ctx context.Context, id uint64, checkedAt time.Time) error

	// Sync run log
	InsertSyncRun(ctx context.Context, item *models.SyncRun) error
	LatestSyncRun(ctx context.Context) (*models.SyncRun, error)
	ListSyncRuns(ctx context.Context, limit, offset int) ([]models.SyncRun, error)
}

type ListNoticesParams struct {
	Limit          int
	Offset         int
	States         []string
	PublishedSince *time.Time
	PublishedUntil *time.Time
	MinValue       *decimal.Decimal
	MaxValue       *decimal.Decimal
	Keyword        *string
	Complete       *bool
	OrderBy        string
	Asc            *bool
}
