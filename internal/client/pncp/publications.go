package pncp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// MaxPageSize is the upstream API's hard page-size ceiling; larger requests
// are clamped, not rejected.
const MaxPageSize = 50

// Category codes (modalidades) partition the upstream catalog.
const (
	CategoryMin = 1
	CategoryMax = 13
)

const dateLayout = "20060102"

type PublicationQuery struct {
	Category int
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	PageSize int
}

type FetchStats struct {
	Pages        int
	TotalRecords int
	RateLimited  bool
}

// ValidCategory reports whether code is inside the documented modalidade set.
// Out-of-range values are treated as "not provided": the filter is omitted
// from the request, because sending 0 is invalid against the upstream
// contract.
func ValidCategory(code int) bool {
	return code >= CategoryMin && code <= CategoryMax
}

func (c *Client) FetchPublicationsPage(ctx context.Context, q PublicationQuery) (*PublicationPage, error) {
	size := q.PageSize
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("dataInicial", q.DateFrom.Format(dateLayout))
	query.Set("dataFinal", q.DateTo.Format(dateLayout))
	if ValidCategory(q.Category) {
		query.Set("codigoModalidadeContratacao", strconv.Itoa(q.Category))
	}
	query.Set("pagina", strconv.Itoa(page))
	query.Set("tamanhoPagina", strconv.Itoa(size))

	body, err := c.doRequest(ctx, "/contratacoes/publicacao", query)
	if err != nil {
		return nil, err
	}

	var env pageEnvelope
	if len(body) > 0 {
		// Empty or unparseable bodies decode to an empty page so the page
		// loop can still terminate.
		_ = json.Unmarshal(body, &env)
	}

	out := &PublicationPage{
		TotalPages:   env.TotalPages,
		TotalRecords: env.TotalRecords,
	}
	for _, raw := range env.Data {
		var pub Publication
		if err := json.Unmarshal(raw, &pub); err != nil {
			continue
		}
		if pub.ControlNumber == "" {
			continue
		}
		pub.Raw = raw
		out.Records = append(out.Records, pub)
	}
	return out, nil
}

// FetchAllPublications walks every page of one category/date window,
// accumulating records keyed by control number (last write wins). It stops on
// an empty page, the last page, or a terminal HTTP status. A 429 aborts the
// category without retrying and whatever was accumulated so far is returned;
// other non-success statuses return the accumulator alongside the error.
// A fixed delay separates successful page fetches to respect upstream rate
// limits.
func (c *Client) FetchAllPublications(ctx context.Context, category int, dateFrom, dateTo time.Time, pageDelay time.Duration) (map[string]Publication, FetchStats, error) {
	acc := make(map[string]Publication)
	stats := FetchStats{}

	for page := 1; ; page++ {
		pageResult, err := c.FetchPublicationsPage(ctx, PublicationQuery{
			Category: category,
			DateFrom: dateFrom,
			DateTo:   dateTo,
			Page:     page,
		})
		if err != nil {
			if IsStatus(err, http.StatusTooManyRequests) {
				stats.RateLimited = true
				return acc, stats, nil
			}
			return acc, stats, err
		}

		if len(pageResult.Records) == 0 {
			return acc, stats, nil
		}
		stats.Pages++
		stats.TotalRecords = pageResult.TotalRecords
		for _, pub := range pageResult.Records {
			acc[pub.ControlNumber] = pub
		}

		if pageResult.TotalPages > 0 && page >= pageResult.TotalPages {
			return acc, stats, nil
		}

		if pageDelay > 0 {
			select {
			case <-ctx.Done():
				return acc, stats, ctx.Err()
			case <-time.After(pageDelay):
			}
		}
	}
}
