package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"licitaradar/internal/models"
	"licitaradar/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	mu sync.Mutex

	notices map[string]*models.Notice
	nextID  uint64

	childrenByNotice map[uint64]struct {
		items []models.NoticeItem
		docs  []models.NoticeDocument
	}
	historyByNotice map[uint64][]byte

	subs       []models.AlertSubscription
	checkedIDs []uint64

	runs []models.SyncRun

	failUpsert bool
	failList   bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		notices: map[string]*models.Notice{},
		childrenByNotice: map[uint64]struct {
			items []models.NoticeItem
			docs  []models.NoticeDocument
		}{},
		historyByNotice: map[uint64][]byte{},
	}
}

var _ repository.Repository = (*stubRepo)(nil)

func (s *stubRepo) UpsertNotice(ctx context.Context, item *models.Notice) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpsert {
		return 0, fmt.Errorf("stub upsert failure")
	}
	if existing, ok := s.notices[item.ControlNumber]; ok {
		item.ID = existing.ID
		item.Complete = existing.Complete
		s.notices[item.ControlNumber] = item
		return existing.ID, nil
	}
	s.nextID++
	item.ID = s.nextID
	s.notices[item.ControlNumber] = item
	return item.ID, nil
}

func (s *stubRepo) GetNoticeByControlNumber(ctx context.Context, controlNumber string) (*models.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notice, ok := s.notices[controlNumber]
	if !ok {
		return nil, nil
	}
	copied := *notice
	return &copied, nil
}

func (s *stubRepo) CompleteControlNumbers(ctx context.Context, controlNumbers []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]bool{}
	for _, cn := range controlNumbers {
		if notice, ok := s.notices[cn]; ok && notice.Complete {
			out[cn] = true
		}
	}
	return out, nil
}

func (s *stubRepo) MarkNoticeComplete(ctx context.Context, noticeID uint64, historyJSON []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, notice := range s.notices {
		if notice.ID == noticeID {
			notice.Complete = true
		}
	}
	s.historyByNotice[noticeID] = historyJSON
	return nil
}

func (s *stubRepo) ReplaceNoticeChildren(ctx context.Context, noticeID uint64, items []models.NoticeItem, documents []models.NoticeDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.childrenByNotice[noticeID] = struct {
		items []models.NoticeItem
		docs  []models.NoticeDocument
	}{items, documents}
	return nil
}

func (s *stubRepo) ListNotices(ctx context.Context, params repository.ListNoticesParams) ([]models.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, fmt.Errorf("stub list failure")
	}
	var out []models.Notice
	for _, notice := range s.notices {
		if params.PublishedSince != nil && notice.PublishedAt.Before(*params.PublishedSince) {
			continue
		}
		if len(params.States) > 0 && !containsString(params.States, notice.State) {
			continue
		}
		if params.MinValue != nil && (notice.EstimatedValue == nil || notice.EstimatedValue.LessThan(*params.MinValue)) {
			continue
		}
		if params.MaxValue != nil && notice.EstimatedValue != nil && notice.EstimatedValue.GreaterThan(*params.MaxValue) {
			continue
		}
		out = append(out, *notice)
	}
	return out, nil
}

func (s *stubRepo) CountNotices(ctx context.Context, params repository.ListNoticesParams) (int64, error) {
	notices, err := s.ListNotices(ctx, params)
	return int64(len(notices)), err
}

func (s *stubRepo) ListNoticeItems(ctx context.Context, noticeID uint64) ([]models.NoticeItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.childrenByNotice[noticeID].items, nil
}

func (s *stubRepo) ListNoticeDocuments(ctx context.Context, noticeID uint64) ([]models.NoticeDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.childrenByNotice[noticeID].docs, nil
}

func (s *stubRepo) UpsertSubscription(ctx context.Context, item *models.AlertSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, *item)
	return nil
}

func (s *stubRepo) ListActiveSubscriptions(ctx context.Context) ([]models.AlertSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AlertSubscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.Active {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *stubRepo) ListSubscriptions(ctx context.Context, limit, offset int) ([]models.AlertSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AlertSubscription(nil), s.subs...), nil
}

func (s *stubRepo) UpdateSubscriptionLastChecked(ctx context.Context, id uint64, checkedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkedIDs = append(s.checkedIDs, id)
	for i := range s.subs {
		if s.subs[i].ID == id {
			t := checkedAt
			s.subs[i].LastChecked = &t
		}
	}
	return nil
}

func (s *stubRepo) InsertSyncRun(ctx context.Context, item *models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *item)
	return nil
}

func (s *stubRepo) LatestSyncRun(ctx context.Context) (*models.SyncRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.runs) == 0 {
		return nil, nil
	}
	run := s.runs[len(s.runs)-1]
	return &run, nil
}

func (s *stubRepo) ListSyncRuns(ctx context.Context, limit, offset int) ([]models.SyncRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SyncRun(nil), s.runs...), nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
