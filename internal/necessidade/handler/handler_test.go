package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/necessidade/service"
	"sinaliza-recon/internal/store/sqlite"
)

type fixture struct {
	srv   *httptest.Server
	store *sqlite.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.UpsertCadastro(ctx, []model.CadastroItem{
		{ID: "def-1", Lote: "L1", Rodovia: "BR-101", Tipo: model.Defensas,
			Location: model.Location{Segment: &model.Segment{KmInicial: 10.4, KmFinal: 12}}},
	}))

	logger := zerolog.New(io.Discard)
	h := New(
		service.NewImporter(st, service.FixedTolerance(50), logger),
		service.NewWorkflow(st, nil, nil, logger),
		1, logger,
	)
	r := chi.NewRouter()
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, store: st}
}

func (f *fixture) upload(t *testing.T, fields map[string]string, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(f.srv.URL+"/importacoes", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) post(t *testing.T, path, actorID, role, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if actorID != "" {
		req.Header.Set(headerActorID, actorID)
		req.Header.Set(headerActorRole, role)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

const defensasCSV = "Km Inicial;Km Final;Lado;Extensão (m)\n10,000;11,000;LD;1000\n;;;\n20;21;LD;1000\n"

func TestImportEndpoint(t *testing.T) {
	f := newFixture(t)
	resp := f.upload(t, map[string]string{"tipo": "Defensas", "lote": "L1", "rodovia": "BR-101"}, "defensas.csv", defensasCSV)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res := decode[service.ImportResult](t, resp)
	assert.NotEmpty(t, res.ImportID)
	assert.Equal(t, 1, res.HeaderRow)
	assert.Equal(t, model.Summary{Read: 3, Skipped: 1, SkippedEmpty: 1, Valid: 2, Successes: 2}, res.Summary)

	var rows []int
	for _, l := range res.Logs {
		if l.Level == model.LogSuccess {
			rows = append(rows, l.Row)
		}
	}
	assert.Equal(t, []int{2, 4}, rows)
}

func TestImportEndpointRejects(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		want     string
	}{
		{"unknown type", map[string]string{"tipo": "semaforo", "lote": "L1", "rodovia": "BR-101"}, "x.csv", "unknown asset type"},
		{"no lote", map[string]string{"tipo": "defensas", "rodovia": "BR-101"}, "x.csv", "lote"},
		{"no file", map[string]string{"tipo": "defensas", "lote": "L1", "rodovia": "BR-101"}, "", "missing file"},
		{"bad extension", map[string]string{"tipo": "defensas", "lote": "L1", "rodovia": "BR-101"}, "x.pdf", "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.upload(t, tt.fields, tt.filename, defensasCSV)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, decode[errorBody](t, resp).Error, tt.want)
		})
	}
}

func (f *fixture) seed(t *testing.T, id string, status model.Status, withMatch bool) {
	t.Helper()
	n := model.Necessidade{
		ID: id, ImportID: "imp", Linha: 2, Lote: "L1", Rodovia: "BR-101", Tipo: model.Defensas,
		Location:        model.Location{Segment: &model.Segment{KmInicial: 10, KmFinal: 11}},
		ServicoInferido: model.Substituir, ServicoFinal: model.Substituir,
		StatusReconciliacao: status, Versao: 1,
	}
	if withMatch {
		cad := "def-1"
		n.CadastroID = &cad
	} else {
		n.ServicoInferido, n.ServicoFinal = model.Implantar, model.Implantar
	}
	require.NoError(t, f.store.UpsertNecessidades(context.Background(), []model.Necessidade{n}))
}

func TestRejectFlow(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "n1", model.PendenteAprovacao, true)

	resp := f.post(t, "/necessidades/n1/rejeitar", "coord-1", "Coordenador", `{"versao":1,"justificativa":"different sign model"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[decisionResponse](t, resp)
	assert.Equal(t, model.Implantar, out.Necessidade.ServicoFinal)
	assert.False(t, out.Necessidade.Reconciliado)
	assert.Equal(t, model.Rejeitado, out.Necessidade.StatusReconciliacao)
	assert.Equal(t, "coord-1", out.Decisao.ActorID)

	get, err := http.Get(f.srv.URL + "/necessidades/n1")
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)
	n := decode[model.Necessidade](t, get)
	assert.Equal(t, 2, n.Versao)

	log, err := http.Get(f.srv.URL + "/necessidades/n1/decisoes")
	require.NoError(t, err)
	defer log.Body.Close()
	ds := decode[[]model.ReconciliationDecision](t, log)
	require.Len(t, ds, 1)
	assert.Equal(t, "different sign model", ds[0].Justificativa)
	assert.Equal(t, model.Coordenador, ds[0].Role)
}

func TestConfirmStatuses(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "pend", model.PendenteAprovacao, true)
	f.seed(t, "ok", model.Aprovado, true)
	f.seed(t, "none", model.SemMatch, false)

	tests := []struct {
		name, path, actor, role, body string
		status                        int
	}{
		{"technician confirms", "/necessidades/pend/confirmar", "tec-1", "tecnico", `{"versao":1}`, http.StatusOK},
		{"stale version", "/necessidades/pend/confirmar", "tec-1", "tecnico", `{"versao":1}`, http.StatusConflict},
		{"no match", "/necessidades/none/confirmar", "coord-1", "coordenador", `{"versao":1}`, http.StatusConflict},
		{"decided record", "/necessidades/ok/rejeitar", "tec-1", "tecnico", `{"versao":1,"justificativa":"x"}`, http.StatusForbidden},
		{"blank justification", "/necessidades/pend/rejeitar", "coord-1", "coordenador", `{"versao":2,"justificativa":" "}`, http.StatusBadRequest},
		{"missing actor", "/necessidades/pend/confirmar", "", "", `{"versao":2}`, http.StatusBadRequest},
		{"bad role", "/necessidades/pend/confirmar", "x", "gerente", `{"versao":2}`, http.StatusBadRequest},
		{"missing version", "/necessidades/pend/confirmar", "tec-1", "tecnico", `{}`, http.StatusBadRequest},
		{"unknown field", "/necessidades/pend/confirmar", "tec-1", "tecnico", `{"versao":2,"x":1}`, http.StatusBadRequest},
		{"unknown record", "/necessidades/nope/confirmar", "tec-1", "tecnico", `{"versao":1}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.post(t, tt.path, tt.actor, tt.role, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestGetUnknown(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"/necessidades/nope", "/necessidades/nope/decisoes"} {
		resp, err := http.Get(f.srv.URL + p)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, p)
	}
}
