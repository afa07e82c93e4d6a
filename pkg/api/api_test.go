package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/canteiro/canteiro/pkg/observability/logger"
	"github.com/canteiro/canteiro/pkg/registry"
	"github.com/canteiro/canteiro/pkg/relations"
	"github.com/canteiro/canteiro/pkg/repository"
	"github.com/canteiro/canteiro/pkg/server/router"
	gorillaadapter "github.com/canteiro/canteiro/pkg/server/router/gorilla"
	"github.com/canteiro/canteiro/pkg/store/memory"
)

func newTestRouter(t *testing.T) router.Router {
	t.Helper()
	engine, err := repository.NewEngine(registry.New(), memory.NewStore(), logger.NewNop())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	rel, err := relations.NewService(engine, logger.NewNop())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	handlers, err := NewAPI(engine, rel, logger.NewNop())
	if err != nil {
		t.Fatalf("NewAPI failed: %v", err)
	}

	r := gorillaadapter.NewRouter()
	handlers.Register(r)
	return r
}

func perform(t *testing.T, r router.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q failed: %v", rec.Body.String(), err)
	}
	return out
}

func createPessoa(t *testing.T, r router.Router, nome string) string {
	t.Helper()
	rec := perform(t, r, http.MethodPost, "/pessoas/", map[string]any{
		"nome": nome, "email": nome + "@example.com", "idade": 30,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create pessoa status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[IDResponse](t, rec).ID
}

func createTerreno(t *testing.T, r router.Router, descricao string) string {
	t.Helper()
	rec := perform(t, r, http.MethodPost, "/terrenos/", map[string]any{
		"largura": 10.0, "comprimento": 20.0, "disponivel": true,
		"preco": 100000.0, "descricao": descricao,
		"endereco": map[string]any{"rua": "Rua A", "numero": 1, "cidade": "Recife", "estado": "PE", "cep": "50000-000"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create terreno status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[IDResponse](t, rec).ID
}

func TestCreateAndListPessoas(t *testing.T) {
	r := newTestRouter(t)
	id := createPessoa(t, r, "Maria")

	rec := perform(t, r, http.MethodGet, "/pessoas/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	pessoas := decode[[]map[string]any](t, rec)
	if len(pessoas) != 1 {
		t.Fatalf("list returned %d pessoas, want 1", len(pessoas))
	}
	if pessoas[0]["id"] != id {
		t.Fatalf("listed id = %v, want %s", pessoas[0]["id"], id)
	}
	if pessoas[0]["terrenos_ids"] == nil {
		t.Fatal("terrenos_ids should serialize as an empty array, not null")
	}
}

func TestQuantidade(t *testing.T) {
	r := newTestRouter(t)
	createPessoa(t, r, "Maria")
	createPessoa(t, r, "Carlos")

	rec := perform(t, r, http.MethodGet, "/pessoas/quantidade_pessoas", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("quantidade status = %d", rec.Code)
	}
	if got := decode[QuantidadeResponse](t, rec); got.Quantidade != 2 {
		t.Fatalf("quantidade = %d, want 2", got.Quantidade)
	}
}

func TestPaginacao(t *testing.T) {
	r := newTestRouter(t)
	for i := 0; i < 7; i++ {
		createPessoa(t, r, fmt.Sprintf("pessoa-%d", i))
	}

	rec := perform(t, r, http.MethodGet, "/pessoas/paginacao?pagina=2&limite=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("paginacao status = %d, body %s", rec.Code, rec.Body.String())
	}
	page := decode[struct {
		Data         []map[string]any `json:"data"`
		PaginaAtual  int64            `json:"pagina_atual"`
		TotalPaginas int64            `json:"total_paginas"`
	}](t, rec)
	if len(page.Data) != 3 || page.PaginaAtual != 2 || page.TotalPaginas != 3 {
		t.Fatalf("page = %+v", page)
	}
}

func TestPaginacaoInvalid(t *testing.T) {
	r := newTestRouter(t)
	for _, query := range []string{"pagina=0", "limite=0", "pagina=abc", "limite=-1"} {
		rec := perform(t, r, http.MethodGet, "/pessoas/paginacao?"+query, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("paginacao?%s status = %d, want 400", query, rec.Code)
		}
	}
}

func TestFilter(t *testing.T) {
	r := newTestRouter(t)
	createPessoa(t, r, "Maria Silva")
	createPessoa(t, r, "Carlos")

	rec := perform(t, r, http.MethodGet, "/pessoas/filter/?atributo=nome&busca=silva", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("filter status = %d", rec.Code)
	}
	if got := decode[[]map[string]any](t, rec); len(got) != 1 {
		t.Fatalf("filter returned %d results, want 1", len(got))
	}
}

func TestFilterUnknownField(t *testing.T) {
	r := newTestRouter(t)
	rec := perform(t, r, http.MethodGet, "/pessoas/filter/?atributo=altura&busca=1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("filter unknown field status = %d, want 400", rec.Code)
	}
}

func TestPutInvalidID(t *testing.T) {
	r := newTestRouter(t)
	rec := perform(t, r, http.MethodPut, "/pessoas/not-an-id", map[string]any{"nome": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("put invalid id status = %d, want 400", rec.Code)
	}
}

func TestPatchMissing(t *testing.T) {
	r := newTestRouter(t)
	missing := primitive.NewObjectID().Hex()
	rec := perform(t, r, http.MethodPatch, "/pessoas/"+missing, map[string]any{"nome": "x"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("patch missing status = %d, want 404", rec.Code)
	}
}

func TestPutThenGetUpdated(t *testing.T) {
	r := newTestRouter(t)
	id := createPessoa(t, r, "Maria")

	rec := perform(t, r, http.MethodPut, "/pessoas/"+id, map[string]any{
		"nome": "Maria Souza", "email": "maria@example.com", "idade": 31,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[map[string]any](t, rec)
	if updated["nome"] != "Maria Souza" {
		t.Fatalf("put response nome = %v", updated["nome"])
	}
}

func TestDeletePessoa(t *testing.T) {
	r := newTestRouter(t)
	id := createPessoa(t, r, "Maria")

	rec := perform(t, r, http.MethodDelete, "/pessoas/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode[MsgResponse](t, rec); got.Msg != "deleted" {
		t.Fatalf("delete msg = %q", got.Msg)
	}

	rec = perform(t, r, http.MethodDelete, "/pessoas/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestLinkAndListTerrenosDaPessoa(t *testing.T) {
	r := newTestRouter(t)
	pessoaID := createPessoa(t, r, "Maria")
	terrenoID := createTerreno(t, r, "lote 1")

	rec := perform(t, r, http.MethodPost, "/pessoas/"+pessoaID+"/adicionar-terreno/"+terrenoID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("link status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = perform(t, r, http.MethodGet, "/pessoas/terrenos/"+pessoaID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("terrenos da pessoa status = %d", rec.Code)
	}
	if got := decode[[]map[string]any](t, rec); len(got) != 1 {
		t.Fatalf("terrenos da pessoa = %d results, want 1", len(got))
	}
}

func TestLinkMissingTerreno(t *testing.T) {
	r := newTestRouter(t)
	pessoaID := createPessoa(t, r, "Maria")
	missing := primitive.NewObjectID().Hex()

	rec := perform(t, r, http.MethodPost, "/pessoas/"+pessoaID+"/adicionar-terreno/"+missing, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("link missing terreno status = %d, want 404", rec.Code)
	}
}

func TestConstrucaoLifecycle(t *testing.T) {
	r := newTestRouter(t)
	terrenoID := createTerreno(t, r, "lote 1")

	rec := perform(t, r, http.MethodPost, "/contrucoes/", map[string]any{
		"nome": "casa", "descricao": "terrea", "custo_total": 250000.0,
		"tipo": "residencial", "area": 120.0, "terreno_id": terrenoID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create construcao status = %d, body %s", rec.Code, rec.Body.String())
	}
	construcaoID := decode[IDResponse](t, rec).ID

	rec = perform(t, r, http.MethodGet, "/contrucoes/", nil)
	if got := decode[[]map[string]any](t, rec); len(got) != 1 {
		t.Fatalf("list construcoes = %d results, want 1", len(got))
	}

	rec = perform(t, r, http.MethodDelete, "/contrucoes/"+construcaoID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete construcao status = %d", rec.Code)
	}
}

func TestCreateConstrucaoMissingTerreno(t *testing.T) {
	r := newTestRouter(t)
	rec := perform(t, r, http.MethodPost, "/contrucoes/", map[string]any{
		"nome": "casa", "terreno_id": primitive.NewObjectID().Hex(),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("create construcao on missing terreno status = %d, want 404", rec.Code)
	}
}

func TestObraCreateAndAggregation(t *testing.T) {
	r := newTestRouter(t)
	pessoaID := createPessoa(t, r, "Maria")
	terrenoID := createTerreno(t, r, "lote 1")
	perform(t, r, http.MethodPost, "/pessoas/"+pessoaID+"/adicionar-terreno/"+terrenoID, nil)

	rec := perform(t, r, http.MethodPost, "/contrucoes/", map[string]any{
		"nome": "casa", "terreno_id": terrenoID,
	})
	construcaoID := decode[IDResponse](t, rec).ID

	for _, custo := range []float64{60, 40} {
		rec = perform(t, r, http.MethodPost, "/obras/", map[string]any{
			"nome": "etapa", "inicio": "2026-01-05T00:00:00Z",
			"custo": custo, "construcao_id": construcaoID,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create obra status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec = perform(t, r, http.MethodGet, "/pessoas/total_gasto_obras/"+pessoaID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("total gasto status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode[TotalResponse](t, rec); got.Total != 100 {
		t.Fatalf("total = %v, want 100", got.Total)
	}

	rec = perform(t, r, http.MethodGet, "/terrenos/terreno/gastos_obras/"+terrenoID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("gastos do terreno status = %d", rec.Code)
	}
	if got := decode[TotalResponse](t, rec); got.Total != 100 {
		t.Fatalf("terreno total = %v, want 100", got.Total)
	}
}

func TestInvalidIDOnEveryKind(t *testing.T) {
	r := newTestRouter(t)
	paths := []string{"/pessoas/not-an-id", "/terrenos/not-an-id", "/contrucoes/not-an-id", "/obras/not-an-id"}
	for _, path := range paths {
		rec := perform(t, r, http.MethodDelete, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("DELETE %s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestMalformedBody(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/pessoas/", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", rec.Code)
	}
}
