package pncp

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Publication is one notice row from /contratacoes/publicacao. Raw keeps the
// original JSON so the persistence layer can store the untouched payload.
type Publication struct {
	ControlNumber    string  `json:"numeroControlePNCP"`
	CategoryCode     int     `json:"modalidadeId"`
	PublishedAt      string  `json:"dataPublicacaoPncp"`
	ProposalOpensAt  string  `json:"dataAberturaProposta"`
	ProposalClosesAt string  `json:"dataEncerramentoProposta"`
	EstimatedValue   float64 `json:"valorTotalEstimado"`
	Object           string  `json:"objetoCompra"`

	Entity struct {
		Name string `json:"razaoSocial"`
		CNPJ string `json:"cnpj"`
	} `json:"orgaoEntidade"`

	Unit struct {
		State        string `json:"ufSigla"`
		Municipality string `json:"municipioNome"`
	} `json:"unidadeOrgao"`

	Raw json.RawMessage `json:"-"`
}

type PublicationPage struct {
	Records      []Publication
	TotalPages   int
	TotalRecords int
}

type pageEnvelope struct {
	Data         []json.RawMessage `json:"data"`
	TotalPages   int               `json:"totalPaginas"`
	TotalRecords int               `json:"totalRegistros"`
}

type Item struct {
	Sequence           int     `json:"numeroItem"`
	Description        string  `json:"descricao"`
	Quantity           float64 `json:"quantidade"`
	UnitValue          float64 `json:"valorUnitarioEstimado"`
	TotalValue         float64 `json:"valorTotal"`
	ClassificationCode string  `json:"catalogoCodigoItem"`

	Raw json.RawMessage `json:"-"`
}

type Document struct {
	Filename    string `json:"titulo"`
	TypeCode    int    `json:"tipoDocumentoId"`
	URL         string `json:"url"`
	SizeBytes   int64  `json:"tamanhoArquivo"`
	PublishedAt string `json:"dataPublicacaoPncp"`
}

// decodeList tolerates the three envelope shapes the upstream is known to
// return: a bare array, an object with a `data` array, or nothing at all.
// Anything else coerces to an empty list instead of an error so pagination
// and enrichment keep progressing.
func decodeList(body []byte) []json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return nil
		}
		return items
	case '{':
		var env pageEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil
		}
		return env.Data
	default:
		return nil
	}
}

// ParseTime accepts the portal's timestamp variants; it returns the zero
// time when none match.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
