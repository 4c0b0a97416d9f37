package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"licitaradar/internal/client/pncp"
	"licitaradar/internal/config"
	"licitaradar/internal/models"
	"licitaradar/internal/repository"
)

// SyncService is the daily orchestrator: it walks the configured categories
// for one target date, merges the paginated results into a run-wide set
// keyed by control number, enriches and persists what is not yet complete,
// hands the date to the alert matcher, and appends one run-log row no matter
// how much of that degraded along the way.
type SyncService struct {
	Repo     repository.Repository
	Client   *pncp.Client
	Enricher *Enricher
	Alerts   *AlertService
	Logger   *zap.Logger
	Config   config.SyncConfig
	PNCP     config.PNCPConfig
	Location *time.Location
}

type SyncOptions struct {
	// Date is the single-day publication window; zero means today in the
	// service's location.
	Date       time.Time
	Categories []int

	// Progress receives batch progress events when the caller wants to
	// stream them; the terminal event carries Finished=true. Sends are
	// non-blocking so a slow consumer cannot stall the run.
	Progress chan<- SyncProgress
}

type SyncProgress struct {
	Stage    string `json:"stage"`
	Category int    `json:"category,omitempty"`
	Found    int    `json:"found"`
	Saved    int    `json:"saved"`
	Finished bool   `json:"finished"`
}

type SyncResult struct {
	Date             string `json:"date"`
	TotalFound       int    `json:"total_found"`
	TotalSaved       int    `json:"total_saved"`
	TotalSkipped     int    `json:"total_skipped"`
	CategoriesOK     int    `json:"categories_ok"`
	CategoriesFailed int    `json:"categories_failed"`
	AlertsChecked    int    `json:"alerts_checked"`
	AlertsSent       int    `json:"alerts_sent"`
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
	DurationMS       int64  `json:"duration_ms"`
}

func (s *SyncService) Sync(ctx context.Context, opts SyncOptions) (SyncResult, error) {
	started := time.Now()
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	date := opts.Date
	if date.IsZero() {
		date = time.Now().In(loc)
	}
	categories := opts.Categories
	if len(categories) == 0 {
		categories = s.Config.Categories
	}

	result := SyncResult{Date: date.Format("2006-01-02")}
	emit := func(p SyncProgress) {
		if opts.Progress == nil {
			return
		}
		select {
		case opts.Progress <- p:
		default:
		}
	}

	merged := map[string]pncp.Publication{}
	var fatal error
	for i, category := range categories {
		batch, stats, err := s.Client.FetchAllPublications(ctx, category, date, date, s.PNCP.PageDelay)
		merged = Merge(merged, batch)
		switch {
		case err == nil:
			result.CategoriesOK++
			if stats.RateLimited && s.Logger != nil {
				s.Logger.Warn("category rate limited, partial results kept",
					zap.Int("category", category),
					zap.Int("accumulated", len(batch)),
				)
			}
		case pncp.IsStatus(err, http.StatusBadRequest):
			// The upstream answers 400 when a category/date combination has
			// no data; expected and benign.
			result.CategoriesOK++
			if s.Logger != nil {
				s.Logger.Debug("likely no data for category/date",
					zap.Int("category", category),
					zap.String("date", result.Date),
				)
			}
		default:
			result.CategoriesFailed++
			if s.Logger != nil {
				s.Logger.Warn("category fetch failed",
					zap.Int("category", category),
					zap.Error(err),
				)
			}
			if i == 0 {
				// A total failure on the first (highest-volume) category
				// means the upstream is unreachable for this run.
				fatal = err
			}
		}
		if fatal != nil {
			break
		}
		emit(SyncProgress{Stage: "fetch", Category: category, Found: len(merged)})

		if ctx.Err() != nil {
			fatal = ctx.Err()
			break
		}
		if i < len(categories)-1 && s.Config.CategoryDelay > 0 {
			select {
			case <-ctx.Done():
				fatal = ctx.Err()
			case <-time.After(s.Config.CategoryDelay):
			}
			if fatal != nil {
				break
			}
		}
	}

	result.TotalFound = len(merged)
	if fatal != nil {
		result.Error = fatal.Error()
		result.DurationMS = time.Since(started).Milliseconds()
		s.writeRunLog(ctx, result)
		emit(SyncProgress{Stage: "failed", Found: result.TotalFound, Finished: true})
		return result, fatal
	}

	s.persistBatch(ctx, merged, &result, emit)

	if s.Alerts != nil {
		checked, sent, err := s.Alerts.CheckDate(ctx, date)
		result.AlertsChecked = checked
		result.AlertsSent = sent
		if err != nil && s.Logger != nil {
			s.Logger.Warn("alert pass after sync failed", zap.Error(err))
		}
	}

	result.Success = true
	result.DurationMS = time.Since(started).Milliseconds()
	s.writeRunLog(ctx, result)
	emit(SyncProgress{Stage: "done", Found: result.TotalFound, Saved: result.TotalSaved, Finished: true})

	if s.Logger != nil {
		s.Logger.Info("sync completed",
			zap.String("date", result.Date),
			zap.Int("found", result.TotalFound),
			zap.Int("saved", result.TotalSaved),
			zap.Int("skipped", result.TotalSkipped),
			zap.Int("categories_failed", result.CategoriesFailed),
			zap.Int64("duration_ms", result.DurationMS),
		)
	}
	return result, nil
}

func (s *SyncService) persistBatch(ctx context.Context, merged map[string]pncp.Publication, result *SyncResult, emit func(SyncProgress)) {
	controlNumbers := make([]string, 0, len(merged))
	for cn := range merged {
		controlNumbers = append(controlNumbers, cn)
	}
	complete, err := s.Repo.CompleteControlNumbers(ctx, controlNumbers)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("complete-flag lookup failed, enriching everything", zap.Error(err))
		}
		complete = map[string]bool{}
	}

	for cn, pub := range merged {
		if ctx.Err() != nil {
			return
		}
		if complete[cn] {
			// Already enriched at least once; skipped entirely to bound
			// upstream load.
			result.TotalSkipped++
			continue
		}
		if err := s.persistOne(ctx, pub); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("persist notice failed",
					zap.String("control_number", cn),
					zap.Error(err),
				)
			}
			continue
		}
		result.TotalSaved++
		if result.TotalSaved%25 == 0 {
			emit(SyncProgress{Stage: "persist", Found: result.TotalFound, Saved: result.TotalSaved})
		}
	}
}

func (s *SyncService) persistOne(ctx context.Context, pub pncp.Publication) error {
	notice := mapPublication(pub, time.Now().UTC())
	noticeID, err := s.Repo.UpsertNotice(ctx, notice)
	if err != nil {
		return fmt.Errorf("upsert notice: %w", err)
	}

	enrichment := s.Enricher.Enrich(ctx, pub.ControlNumber)
	items := mapItems(enrichment)
	documents := mapDocuments(enrichment.Documents)
	if err := s.Repo.ReplaceNoticeChildren(ctx, noticeID, items, documents); err != nil {
		return fmt.Errorf("replace children: %w", err)
	}

	var historyJSON []byte
	if len(enrichment.History) > 0 {
		historyJSON, _ = json.Marshal(enrichment.History)
	}
	if err := s.Repo.MarkNoticeComplete(ctx, noticeID, historyJSON); err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	return nil
}

func (s *SyncService) writeRunLog(ctx context.Context, result SyncResult) {
	run := &models.SyncRun{
		Date:             result.Date,
		TotalFound:       result.TotalFound,
		TotalSaved:       result.TotalSaved,
		TotalSkipped:     result.TotalSkipped,
		CategoriesOK:     result.CategoriesOK,
		CategoriesFailed: result.CategoriesFailed,
		AlertsChecked:    result.AlertsChecked,
		AlertsSent:       result.AlertsSent,
		Success:          result.Success,
		DurationMS:       result.DurationMS,
	}
	if result.Error != "" {
		msg := result.Error
		run.ErrorMessage = &msg
	}
	if err := s.Repo.InsertSyncRun(ctx, run); err != nil && s.Logger != nil {
		s.Logger.Warn("write sync run log failed", zap.Error(err))
	}
}

func mapPublication(pub pncp.Publication, now time.Time) *models.Notice {
	notice := &models.Notice{
		ControlNumber:     pub.ControlNumber,
		CategoryCode:      pub.CategoryCode,
		EntityName:        pub.Entity.Name,
		EntityCNPJ:        pub.Entity.CNPJ,
		ObjectDescription: pub.Object,
		State:             pub.Unit.State,
		Municipality:      pub.Unit.Municipality,
		LastSeenAt:        now,
	}
	if t := pncp.ParseTime(pub.PublishedAt); !t.IsZero() {
		notice.PublishedAt = t
	} else {
		notice.PublishedAt = now
	}
	if t := pncp.ParseTime(pub.ProposalOpensAt); !t.IsZero() {
		notice.ProposalOpensAt = &t
	}
	if t := pncp.ParseTime(pub.ProposalClosesAt); !t.IsZero() {
		notice.ProposalClosesAt = &t
	}
	if pub.EstimatedValue > 0 {
		val := decimal.NewFromFloat(pub.EstimatedValue)
		notice.EstimatedValue = &val
	}
	if len(pub.Raw) > 0 {
		notice.RawJSON = datatypes.JSON(pub.Raw)
	}
	return notice
}

func mapItems(enrichment Enrichment) []models.NoticeItem {
	out := make([]models.NoticeItem, 0, len(enrichment.Items))
	for _, item := range enrichment.Items {
		row := models.NoticeItem{
			Sequence:           item.Sequence,
			Description:        item.Description,
			Quantity:           decimal.NewFromFloat(item.Quantity),
			UnitValue:          decimal.NewFromFloat(item.UnitValue),
			TotalValue:         decimal.NewFromFloat(item.TotalValue),
			ClassificationCode: item.ClassificationCode,
		}
		if results, ok := enrichment.ItemResults[item.Sequence]; ok {
			if payload, err := json.Marshal(results); err == nil {
				row.ResultsJSON = datatypes.JSON(payload)
			}
		}
		if images, ok := enrichment.ItemImages[item.Sequence]; ok {
			if payload, err := json.Marshal(images); err == nil {
				row.ImagesJSON = datatypes.JSON(payload)
			}
		}
		out = append(out, row)
	}
	return out
}

func mapDocuments(docs []pncp.Document) []models.NoticeDocument {
	out := make([]models.NoticeDocument, 0, len(docs))
	for _, doc := range docs {
		row := models.NoticeDocument{
			Filename:  doc.Filename,
			TypeCode:  doc.TypeCode,
			URL:       doc.URL,
			SizeBytes: doc.SizeBytes,
		}
		if t := pncp.ParseTime(doc.PublishedAt); !t.IsZero() {
			row.PublishedAt = &t
		}
		out = append(out, row)
	}
	return out
}
