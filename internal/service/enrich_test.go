package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"licitaradar/internal/client/pncp"
)

func TestEnrich_CollectsAllBranches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/itens"):
			fmt.Fprint(w, `[{"numeroItem":1,"descricao":"caneta"},{"numeroItem":2,"descricao":"lápis"}]`)
		case strings.HasSuffix(path, "/documentos"):
			fmt.Fprint(w, `[{"titulo":"edital.pdf","url":"https://example.org/edital.pdf"}]`)
		case strings.HasSuffix(path, "/historico"):
			fmt.Fprint(w, `[{"evento":"publicado"},{"evento":"retificado"}]`)
		case strings.HasSuffix(path, "/resultados"):
			if strings.Contains(path, "/itens/1/") {
				fmt.Fprint(w, `[{"fornecedor":"ACME"}]`)
				return
			}
			fmt.Fprint(w, `[]`)
		case strings.HasSuffix(path, "/imagens"):
			fmt.Fprint(w, `[]`)
		default:
			fmt.Fprint(w, `{"situacao":"divulgada"}`)
		}
	}))
	defer srv.Close()

	e := &Enricher{Client: pncp.NewClient(srv.Client(), srv.URL)}
	out := e.Enrich(context.Background(), "cn-1")

	if len(out.Base) == 0 {
		t.Fatalf("base record missing")
	}
	if len(out.Items) != 2 {
		t.Fatalf("items=%d want 2", len(out.Items))
	}
	if len(out.Documents) != 1 {
		t.Fatalf("documents=%d want 1", len(out.Documents))
	}
	if len(out.History) != 2 {
		t.Fatalf("history=%d want 2", len(out.History))
	}
	if len(out.ItemResults[1]) != 1 {
		t.Fatalf("item 1 results=%d want 1", len(out.ItemResults[1]))
	}
	if _, ok := out.ItemResults[2]; ok {
		t.Fatalf("empty result lists must not be stored")
	}
	if len(out.Failures) != 0 {
		t.Fatalf("failures=%v", out.Failures)
	}
}

func TestEnrich_BranchFailureIsIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/itens"):
			fmt.Fprint(w, `[{"numeroItem":1,"descricao":"caneta"}]`)
		case strings.HasSuffix(path, "/documentos"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasSuffix(path, "/historico"):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.HasSuffix(path, "/resultados"), strings.HasSuffix(path, "/imagens"):
			fmt.Fprint(w, `[]`)
		default:
			fmt.Fprint(w, `{"situacao":"divulgada"}`)
		}
	}))
	defer srv.Close()

	e := &Enricher{Client: pncp.NewClient(srv.Client(), srv.URL)}
	out := e.Enrich(context.Background(), "cn-1")

	if len(out.Items) != 1 {
		t.Fatalf("items=%d, surviving branch lost", len(out.Items))
	}
	if len(out.Documents) != 0 || len(out.History) != 0 {
		t.Fatalf("failed branches must stay empty")
	}
	if len(out.Failures) != 2 {
		t.Fatalf("failures=%d want 2", len(out.Failures))
	}
}

func TestEnrich_EmptyControlNumber(t *testing.T) {
	e := &Enricher{Client: pncp.NewClient(nil, "http://127.0.0.1:0")}
	out := e.Enrich(context.Background(), "")
	if len(out.Items) != 0 || len(out.Failures) != 0 {
		t.Fatalf("empty control number must be a no-op, got %+v", out)
	}
}
