package pncp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Control numbers may contain slashes, so every path segment built from one
// is escaped before use.
func noticePath(controlNumber string) string {
	return "/contratacoes/" + url.PathEscape(controlNumber)
}

// FetchNotice returns the raw base record for one notice.
func (c *Client) FetchNotice(ctx context.Context, controlNumber string) (json.RawMessage, error) {
	if controlNumber == "" {
		return nil, fmt.Errorf("control number is required")
	}
	body, err := c.doRequest(ctx, noticePath(controlNumber), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) FetchItems(ctx context.Context, controlNumber string) ([]Item, error) {
	if controlNumber == "" {
		return nil, fmt.Errorf("control number is required")
	}
	body, err := c.doRequest(ctx, noticePath(controlNumber)+"/itens", nil)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0)
	for _, raw := range decodeList(body) {
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		item.Raw = raw
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) FetchDocuments(ctx context.Context, controlNumber string) ([]Document, error) {
	if controlNumber == "" {
		return nil, fmt.Errorf("control number is required")
	}
	body, err := c.doRequest(ctx, noticePath(controlNumber)+"/documentos", nil)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0)
	for _, raw := range decodeList(body) {
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *Client) FetchHistory(ctx context.Context, controlNumber string) ([]json.RawMessage, error) {
	if controlNumber == "" {
		return nil, fmt.Errorf("control number is required")
	}
	body, err := c.doRequest(ctx, noticePath(controlNumber)+"/historico", nil)
	if err != nil {
		return nil, err
	}
	return decodeList(body), nil
}

func (c *Client) FetchItemResults(ctx context.Context, controlNumber string, itemSequence int) ([]json.RawMessage, error) {
	if controlNumber == "" {
		return nil, fmt.Errorf("control number is required")
	}
	path := noticePath(controlNumber) + "/itens/" + strconv.Itoa(itemSequence) + "/resultados"
	body, err := c.doRequest(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(body), nil
}

func (c *Client) FetchItemImages(ctx context.Context, controlNumber string, itemSequence int) ([]json.RawMessage, error) {
	if controlNumber == "" {
		return nil, fmt.Errorf("control number is required")
	}
	path := noticePath(controlNumber) + "/itens/" + strconv.Itoa(itemSequence) + "/imagens"
	body, err := c.doRequest(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(body), nil
}
