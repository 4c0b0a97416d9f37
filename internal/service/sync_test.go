package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"licitaradar/internal/client/pncp"
	"licitaradar/internal/config"
	"licitaradar/internal/models"
)

func syncPubJSON(controlNumber, object string) string {
	return fmt.Sprintf(`{"numeroControlePNCP":%q,"modalidadeId":6,"dataPublicacaoPncp":"2026-08-31T08:00:00","dataEncerramentoProposta":"2026-09-10T18:00:00","valorTotalEstimado":150000.50,"objetoCompra":%q,"orgaoEntidade":{"razaoSocial":"Prefeitura de Campinas","cnpj":"00000000000191"},"unidadeOrgao":{"ufSigla":"SP","municipioNome":"Campinas"}}`, controlNumber, object)
}

// newSyncServer serves two categories of publications plus the detail
// endpoints the enricher walks.
func newSyncServer(t *testing.T, byCategory map[string][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/contratacoes/publicacao":
			category := r.URL.Query().Get("codigoModalidadeContratacao")
			records, ok := byCategory[category]
			if !ok {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fmt.Fprintf(w, `{"data":[%s],"totalPaginas":1,"totalRegistros":%d}`,
				strings.Join(records, ","), len(records))
		case strings.HasSuffix(path, "/itens"):
			fmt.Fprint(w, `[{"numeroItem":1,"descricao":"caneta azul","quantidade":100,"valorUnitarioEstimado":1.5,"valorTotal":150}]`)
		case strings.HasSuffix(path, "/documentos"):
			fmt.Fprint(w, `[{"titulo":"edital.pdf","tipoDocumentoId":2,"url":"https://example.org/edital.pdf","tamanhoArquivo":1024}]`)
		case strings.HasSuffix(path, "/historico"):
			fmt.Fprint(w, `[{"evento":"publicado"}]`)
		case strings.HasSuffix(path, "/resultados"), strings.HasSuffix(path, "/imagens"):
			fmt.Fprint(w, `[]`)
		default:
			fmt.Fprint(w, `{"situacao":"divulgada"}`)
		}
	}))
}

func newSyncService(repo *stubRepo, client *pncp.Client, categories []int) *SyncService {
	return &SyncService{
		Repo:     repo,
		Client:   client,
		Enricher: &Enricher{Client: client},
		Config:   config.SyncConfig{Categories: categories},
	}
}

func TestSync_MergesAcrossCategoriesAndSkipsComplete(t *testing.T) {
	srv := newSyncServer(t, map[string][]string{
		"6": {syncPubJSON("cn-1", "material escolar"), syncPubJSON("cn-2", "merenda")},
		"8": {syncPubJSON("cn-2", "merenda"), syncPubJSON("cn-3", "obra civil")},
	})
	defer srv.Close()

	repo := newStubRepo()
	// cn-3 was enriched on a previous run.
	repo.notices["cn-3"] = &models.Notice{ID: 99, ControlNumber: "cn-3", Complete: true}
	repo.nextID = 99

	svc := newSyncService(repo, pncp.NewClient(srv.Client(), srv.URL), []int{6, 8})
	progress := make(chan SyncProgress, 32)
	result, err := svc.Sync(context.Background(), SyncOptions{
		Date:     time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Progress: progress,
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.TotalFound != 3 {
		t.Fatalf("found=%d want 3", result.TotalFound)
	}
	if result.TotalSaved != 2 {
		t.Fatalf("saved=%d want 2", result.TotalSaved)
	}
	if result.TotalSkipped != 1 {
		t.Fatalf("skipped=%d want 1", result.TotalSkipped)
	}
	if result.CategoriesOK != 2 || result.CategoriesFailed != 0 {
		t.Fatalf("categories ok=%d failed=%d", result.CategoriesOK, result.CategoriesFailed)
	}
	if !result.Success {
		t.Fatalf("Success not set")
	}

	// Saved notices were enriched and flagged complete.
	for _, cn := range []string{"cn-1", "cn-2"} {
		notice := repo.notices[cn]
		if notice == nil || !notice.Complete {
			t.Fatalf("%s not marked complete", cn)
		}
		children := repo.childrenByNotice[notice.ID]
		if len(children.items) != 1 || len(children.docs) != 1 {
			t.Fatalf("%s children items=%d docs=%d", cn, len(children.items), len(children.docs))
		}
		if len(repo.historyByNotice[notice.ID]) == 0 {
			t.Fatalf("%s history not stored", cn)
		}
	}

	if len(repo.runs) != 1 {
		t.Fatalf("runs=%d want 1", len(repo.runs))
	}
	if repo.runs[0].Date != "2026-08-31" || !repo.runs[0].Success {
		t.Fatalf("run=%+v", repo.runs[0])
	}

	close(progress)
	var last SyncProgress
	var sawTerminal bool
	for p := range progress {
		last = p
		if p.Finished {
			sawTerminal = true
		}
	}
	if !sawTerminal || !last.Finished || last.Stage != "done" {
		t.Fatalf("terminal progress missing, last=%+v", last)
	}
}

func TestSync_FullPageScenario(t *testing.T) {
	// Category 6 spans two pages, 50 + 10 records, with one control number
	// repeated across the page boundary; category 8 returns only that same
	// repeated record. The merged set has 59 unique notices.
	page1 := make([]string, 0, 50)
	for i := 1; i <= 50; i++ {
		page1 = append(page1, syncPubJSON(fmt.Sprintf("cn-%03d", i), "objeto"))
	}
	page2 := make([]string, 0, 10)
	page2 = append(page2, syncPubJSON("cn-050", "objeto"))
	for i := 51; i <= 59; i++ {
		page2 = append(page2, syncPubJSON(fmt.Sprintf("cn-%03d", i), "objeto"))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/contratacoes/publicacao" {
			if r.URL.Query().Get("codigoModalidadeContratacao") == "8" {
				fmt.Fprintf(w, `{"data":[%s],"totalPaginas":1,"totalRegistros":1}`, syncPubJSON("cn-050", "objeto"))
				return
			}
			switch r.URL.Query().Get("pagina") {
			case "1":
				fmt.Fprintf(w, `{"data":[%s],"totalPaginas":2,"totalRegistros":60}`, strings.Join(page1, ","))
			default:
				fmt.Fprintf(w, `{"data":[%s],"totalPaginas":2,"totalRegistros":60}`, strings.Join(page2, ","))
			}
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	repo := newStubRepo()
	svc := newSyncService(repo, pncp.NewClient(srv.Client(), srv.URL), []int{6, 8})
	result, err := svc.Sync(context.Background(), SyncOptions{Date: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.TotalFound != 59 {
		t.Fatalf("found=%d want 59", result.TotalFound)
	}
	if result.TotalSaved != 59 {
		t.Fatalf("saved=%d want 59", result.TotalSaved)
	}
	if repo.runs[0].TotalFound != 59 {
		t.Fatalf("run log found=%d want 59", repo.runs[0].TotalFound)
	}
}

func TestSync_SecondRunSkipsEverything(t *testing.T) {
	srv := newSyncServer(t, map[string][]string{
		"6": {syncPubJSON("cn-1", "material escolar")},
	})
	defer srv.Close()

	repo := newStubRepo()
	svc := newSyncService(repo, pncp.NewClient(srv.Client(), srv.URL), []int{6})
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	first, err := svc.Sync(context.Background(), SyncOptions{Date: date})
	if err != nil || first.TotalSaved != 1 {
		t.Fatalf("first run: saved=%d err=%v", first.TotalSaved, err)
	}
	second, err := svc.Sync(context.Background(), SyncOptions{Date: date})
	if err != nil {
		t.Fatalf("second run err=%v", err)
	}
	if second.TotalSaved != 0 || second.TotalSkipped != 1 {
		t.Fatalf("second run saved=%d skipped=%d", second.TotalSaved, second.TotalSkipped)
	}
	if len(repo.notices) != 1 {
		t.Fatalf("rows=%d, re-sync must not duplicate", len(repo.notices))
	}
	if len(repo.runs) != 2 {
		t.Fatalf("runs=%d want 2", len(repo.runs))
	}
}

func TestSync_BadRequestCategoryIsBenign(t *testing.T) {
	// Category 8 is not in the map, so the server answers 400 for it.
	srv := newSyncServer(t, map[string][]string{
		"6": {syncPubJSON("cn-1", "material escolar")},
	})
	defer srv.Close()

	repo := newStubRepo()
	svc := newSyncService(repo, pncp.NewClient(srv.Client(), srv.URL), []int{6, 8})
	result, err := svc.Sync(context.Background(), SyncOptions{Date: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.CategoriesOK != 2 {
		t.Fatalf("ok=%d want 2, a 400 means no data", result.CategoriesOK)
	}
	if result.TotalFound != 1 || result.TotalSaved != 1 {
		t.Fatalf("found=%d saved=%d", result.TotalFound, result.TotalSaved)
	}
}

func TestSync_FirstCategoryFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	repo := newStubRepo()
	svc := newSyncService(repo, pncp.NewClient(srv.Client(), srv.URL), []int{6, 8})
	progress := make(chan SyncProgress, 32)
	result, err := svc.Sync(context.Background(), SyncOptions{
		Date:     time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Progress: progress,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if result.Success {
		t.Fatalf("Success set on aborted run")
	}
	if len(repo.runs) != 1 || repo.runs[0].Success {
		t.Fatalf("failed run log missing: %+v", repo.runs)
	}
	if repo.runs[0].ErrorMessage == nil {
		t.Fatalf("error message not recorded")
	}

	close(progress)
	var last SyncProgress
	for p := range progress {
		last = p
	}
	if !last.Finished || last.Stage != "failed" {
		t.Fatalf("terminal progress=%+v", last)
	}
}

func TestSync_LaterCategoryFailureContinues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/contratacoes/publicacao" {
			if r.URL.Query().Get("codigoModalidadeContratacao") == "8" {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprintf(w, `{"data":[%s],"totalPaginas":1,"totalRegistros":1}`, syncPubJSON("cn-1", "material"))
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	repo := newStubRepo()
	svc := newSyncService(repo, pncp.NewClient(srv.Client(), srv.URL), []int{6, 8})
	result, err := svc.Sync(context.Background(), SyncOptions{Date: time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("non-first failure must not abort: %v", err)
	}
	if result.CategoriesFailed != 1 || result.CategoriesOK != 1 {
		t.Fatalf("ok=%d failed=%d", result.CategoriesOK, result.CategoriesFailed)
	}
	if !result.Success || result.TotalSaved != 1 {
		t.Fatalf("result=%+v", result)
	}
}

func TestMapPublication_Fields(t *testing.T) {
	publication := pncp.Publication{
		ControlNumber:    "cn-1",
		CategoryCode:     6,
		PublishedAt:      "2026-08-31T08:00:00",
		ProposalClosesAt: "2026-09-10",
		EstimatedValue:   1234.56,
		Object:           "aquisição de pneus",
	}
	publication.Entity.Name = "Prefeitura"
	publication.Entity.CNPJ = "00000000000191"
	publication.Unit.State = "SP"
	publication.Unit.Municipality = "Campinas"
	publication.Raw = []byte(`{"numeroControlePNCP":"cn-1"}`)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	notice := mapPublication(publication, now)
	if notice.ControlNumber != "cn-1" || notice.CategoryCode != 6 {
		t.Fatalf("identity fields: %+v", notice)
	}
	if notice.PublishedAt.Day() != 31 {
		t.Fatalf("published=%v", notice.PublishedAt)
	}
	if notice.ProposalClosesAt == nil || notice.ProposalClosesAt.Month() != 9 {
		t.Fatalf("closes=%v", notice.ProposalClosesAt)
	}
	if notice.EstimatedValue == nil || notice.EstimatedValue.StringFixed(2) != "1234.56" {
		t.Fatalf("value=%v", notice.EstimatedValue)
	}
	if len(notice.RawJSON) == 0 {
		t.Fatalf("raw payload dropped")
	}
}

func TestMapPublication_MissingTimestampsFallBack(t *testing.T) {
	publication := pncp.Publication{ControlNumber: "cn-2"}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	notice := mapPublication(publication, now)
	if !notice.PublishedAt.Equal(now) {
		t.Fatalf("published=%v want now fallback", notice.PublishedAt)
	}
	if notice.ProposalOpensAt != nil || notice.ProposalClosesAt != nil {
		t.Fatalf("optional timestamps must stay nil")
	}
	if notice.EstimatedValue != nil {
		t.Fatalf("zero value must stay nil")
	}
}
