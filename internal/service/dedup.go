package service

import "licitaradar/internal/client/pncp"

// Merge folds any number of record batches into one collection keyed by
// control number, last batch winning on collision. It is used both inside a
// single category's pagination (safety net) and across categories in one
// sync run; the datastore remains the durable dedup boundary across runs.
func Merge(batches ...map[string]pncp.Publication) map[string]pncp.Publication {
	out := make(map[string]pncp.Publication)
	for _, batch := range batches {
		for cn, pub := range batch {
			if cn == "" {
				continue
			}
			out[cn] = pub
		}
	}
	return out
}
