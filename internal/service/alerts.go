package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"licitaradar/internal/config"
	"licitaradar/internal/models"
	"licitaradar/internal/notify"
	"licitaradar/internal/repository"
)

// AlertService polls active subscriptions and notifies their owners about
// newly-visible notices matching the saved filters. Delivery is
// at-least-once: LastChecked only advances after a successful dispatch, so a
// failed delivery leaves the subscription eligible on the next poll.
type AlertService struct {
	Repo       repository.Repository
	Dispatcher notify.Dispatcher
	Logger     *zap.Logger
	Config     config.AlertsConfig
	Location   *time.Location
}

// Run loops RunOnce on the configured interval until the context ends.
func (a *AlertService) Run(ctx context.Context) error {
	if a == nil || a.Repo == nil {
		return nil
	}
	interval := a.Config.PollInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	// One pass on start, then the ticker.
	a.runOnce(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			a.runOnce(ctx)
		}
	}
}

func (a *AlertService) runOnce(ctx context.Context) {
	checked, sent, err := a.RunOnce(ctx, time.Now())
	if err != nil && a.Logger != nil {
		a.Logger.Warn("alert poll pass failed", zap.Error(err))
		return
	}
	if a.Logger != nil && checked > 0 {
		a.Logger.Info("alert poll pass", zap.Int("checked", checked), zap.Int("sent", sent))
	}
}

// RunOnce evaluates every active subscription against its per-day check
// window and dispatches matches. One subscriber's failure never blocks the
// others in the same pass.
func (a *AlertService) RunOnce(ctx context.Context, now time.Time) (checked, sent int, err error) {
	loc := a.location()
	now = now.In(loc)

	subs, err := a.Repo.ListActiveSubscriptions(ctx)
	if err != nil {
		return 0, 0, err
	}
	for i := range subs {
		sub := &subs[i]
		if !a.shouldProcess(sub, now) {
			continue
		}
		checked++
		if a.processSubscription(ctx, sub, a.lookbackSince(sub, now)) {
			sent++
		}
	}
	return checked, sent, nil
}

// CheckDate is the sync-scoped pass: it bypasses the time window and
// evaluates every active subscription against notices published on one date.
func (a *AlertService) CheckDate(ctx context.Context, date time.Time) (checked, sent int, err error) {
	subs, err := a.Repo.ListActiveSubscriptions(ctx)
	if err != nil {
		return 0, 0, err
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, a.location())
	for i := range subs {
		sub := &subs[i]
		checked++
		if a.processSubscription(ctx, sub, dayStart) {
			sent++
		}
	}
	return checked, sent, nil
}

func (a *AlertService) processSubscription(ctx context.Context, sub *models.AlertSubscription, since time.Time) bool {
	notices, err := a.matchNotices(ctx, sub, since)
	if err != nil {
		if a.Logger != nil {
			a.Logger.Warn("subscription match failed",
				zap.Uint64("subscription_id", sub.ID),
				zap.Error(err),
			)
		}
		return false
	}
	if len(notices) == 0 {
		return false
	}

	if a.Dispatcher == nil {
		return false
	}
	if err := a.Dispatcher.Dispatch(ctx, sub, notices); err != nil {
		// LastChecked stays put: the next poll retries this subscription.
		if a.Logger != nil {
			a.Logger.Warn("alert dispatch failed",
				zap.Uint64("subscription_id", sub.ID),
				zap.String("channel", sub.Channel),
				zap.Error(err),
			)
		}
		return false
	}

	now := time.Now().In(a.location())
	if err := a.Repo.UpdateSubscriptionLastChecked(ctx, sub.ID, now); err != nil && a.Logger != nil {
		a.Logger.Warn("update last_checked failed",
			zap.Uint64("subscription_id", sub.ID),
			zap.Error(err),
		)
	}
	return true
}

func (a *AlertService) matchNotices(ctx context.Context, sub *models.AlertSubscription, since time.Time) ([]models.Notice, error) {
	params := repository.ListNoticesParams{
		// Over-fetch before the in-memory keyword/CNAE filters, then cap.
		Limit:          500,
		PublishedSince: &since,
		States:         decodeStrings(sub.States),
		MinValue:       sub.MinValue,
		MaxValue:       sub.MaxValue,
	}
	candidates, err := a.Repo.ListNotices(ctx, params)
	if err != nil {
		return nil, err
	}

	keywords := decodeStrings(sub.Keywords)
	cnaeCodes := decodeStrings(sub.CNAECodes)
	matched := make([]models.Notice, 0, len(candidates))
	for _, notice := range candidates {
		if !matchKeywords(notice, keywords) {
			continue
		}
		if !matchCNAE(notice, cnaeCodes) {
			continue
		}
		matched = append(matched, notice)
	}

	limit := a.Config.MaxNotices
	if limit <= 0 {
		limit = 100
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (a *AlertService) location() *time.Location {
	if a != nil && a.Location != nil {
		return a.Location
	}
	return time.UTC
}

func (a *AlertService) lookbackSince(sub *models.AlertSubscription, now time.Time) time.Time {
	days := a.Config.LookbackDays
	if days <= 0 {
		days = 7
	}
	if sub != nil && sub.Frequency == models.FrequencyWeekly && days < 7 {
		days = 7
	}
	return now.AddDate(0, 0, -days)
}

// shouldProcess decides whether "now" falls inside the subscription's daily
// check window. The window is asymmetric: a few minutes early always
// qualifies, while the late grace period additionally requires that the
// subscription was not already processed today, protecting against missed
// runs from downtime without double-sending.
func (a *AlertService) shouldProcess(sub *models.AlertSubscription, now time.Time) bool {
	if sub == nil {
		return false
	}
	pre := a.Config.PreWindowMin
	if pre <= 0 {
		pre = 5
	}
	post := a.Config.PostWindowMin
	if post <= 0 {
		post = 30
	}

	d, ok := minuteDistance(now, sub.CheckTime)
	if !ok {
		return false
	}
	if d >= -pre && d < 0 {
		return true
	}
	if d >= 0 && d <= post {
		return !checkedToday(sub.LastChecked, now)
	}
	return false
}

// minuteDistance returns the signed distance in minutes from the configured
// "HH:MM" to now's time-of-day, normalizing wrap-around at the day boundary:
// a raw difference beyond ±12h is adjusted by ±24h.
func minuteDistance(now time.Time, checkTime string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(checkTime), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, okH := parseClockPart(parts[0], 23)
	minute, okM := parseClockPart(parts[1], 59)
	if !okH || !okM {
		return 0, false
	}

	d := (now.Hour()*60 + now.Minute()) - (hour*60 + minute)
	if d > 720 {
		d -= 1440
	}
	if d < -720 {
		d += 1440
	}
	return d, true
}

func parseClockPart(s string, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > max {
		return 0, false
	}
	return n, true
}

// checkedToday compares only the date prefix, in the same location as now.
func checkedToday(lastChecked *time.Time, now time.Time) bool {
	if lastChecked == nil {
		return false
	}
	return lastChecked.In(now.Location()).Format("2006-01-02") == now.Format("2006-01-02")
}

func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func matchKeywords(notice models.Notice, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(notice.ObjectDescription)
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// matchCNAE looks for any of the subscription's sector codes inside the
// notice's embedded raw metadata; the upstream does not expose CNAE as a
// first-class field.
func matchCNAE(notice models.Notice, codes []string) bool {
	if len(codes) == 0 {
		return true
	}
	haystack := strings.ToLower(notice.ObjectDescription) + " " + strings.ToLower(string(notice.RawJSON))
	for _, code := range codes {
		if code == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(code)) {
			return true
		}
	}
	return false
}
