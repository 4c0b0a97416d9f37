package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"licitaradar/internal/client/pncp"
)

// Enricher fetches a notice's nested sub-resources. Every branch is an
// isolated outcome: a missing or malformed sub-resource never aborts the
// whole enrichment, so Enrich itself never returns an error.
type Enricher struct {
	Client    *pncp.Client
	Logger    *zap.Logger
	ItemDelay time.Duration
}

type Enrichment struct {
	Base      json.RawMessage
	Items     []pncp.Item
	Documents []pncp.Document
	History   []json.RawMessage

	// Keyed by item sequence number.
	ItemResults map[int][]json.RawMessage
	ItemImages  map[int][]json.RawMessage

	// Failures contains per-branch errors, kept for logging only.
	Failures []error
}

// Enrich fires the base-record, items, documents and history fetches
// concurrently and awaits all of them, then walks the items sequentially,
// fetching each item's results and images in parallel with a small delay
// between items to bound request rate.
func (e *Enricher) Enrich(ctx context.Context, controlNumber string) Enrichment {
	out := Enrichment{
		ItemResults: map[int][]json.RawMessage{},
		ItemImages:  map[int][]json.RawMessage{},
	}
	if e == nil || e.Client == nil || controlNumber == "" {
		return out
	}

	var mu sync.Mutex
	fail := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		out.Failures = append(out.Failures, err)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		base, err := e.Client.FetchNotice(ctx, controlNumber)
		if err != nil {
			fail(err)
			return
		}
		out.Base = base
	}()
	go func() {
		defer wg.Done()
		items, err := e.Client.FetchItems(ctx, controlNumber)
		if err != nil {
			fail(err)
			return
		}
		out.Items = items
	}()
	go func() {
		defer wg.Done()
		docs, err := e.Client.FetchDocuments(ctx, controlNumber)
		if err != nil {
			fail(err)
			return
		}
		out.Documents = docs
	}()
	go func() {
		defer wg.Done()
		history, err := e.Client.FetchHistory(ctx, controlNumber)
		if err != nil {
			fail(err)
			return
		}
		out.History = history
	}()
	wg.Wait()

	for i, item := range out.Items {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && e.ItemDelay > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(e.ItemDelay):
			}
		}

		var itemWG sync.WaitGroup
		itemWG.Add(2)
		seq := item.Sequence
		go func() {
			defer itemWG.Done()
			results, err := e.Client.FetchItemResults(ctx, controlNumber, seq)
			if err != nil {
				fail(err)
				return
			}
			if len(results) > 0 {
				mu.Lock()
				out.ItemResults[seq] = results
				mu.Unlock()
			}
		}()
		go func() {
			defer itemWG.Done()
			images, err := e.Client.FetchItemImages(ctx, controlNumber, seq)
			if err != nil {
				fail(err)
				return
			}
			if len(images) > 0 {
				mu.Lock()
				out.ItemImages[seq] = images
				mu.Unlock()
			}
		}()
		itemWG.Wait()
	}

	if e.Logger != nil && len(out.Failures) > 0 {
		e.Logger.Debug("partial enrichment",
			zap.String("control_number", controlNumber),
			zap.Int("failed_branches", len(out.Failures)),
		)
	}
	return out
}
