package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"sinaliza-recon/internal/fileio"
	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/necessidade/service"
)

// Handler serves spreadsheet imports and manual reconciliation.
type Handler struct {
	importer    *service.Importer
	workflow    *service.Workflow
	maxUploadMB int
	logger      zerolog.Logger
}

func New(im *service.Importer, wf *service.Workflow, maxUploadMB int, logger zerolog.Logger) *Handler {
	return &Handler{importer: im, workflow: wf, maxUploadMB: maxUploadMB, logger: logger}
}

// Routes mounts the endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/importacoes", h.Import)
	r.Route("/necessidades/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/confirmar", h.Confirmar)
		r.Post("/rejeitar", h.Rejeitar)
		r.Get("/decisoes", h.Decisoes)
	})
}

// Import runs one spreadsheet through the pipeline. Multipart fields: file,
// tipo, lote, rodovia.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := zerolog.Ctx(r.Context())
	if log.GetLevel() == zerolog.Disabled {
		log = &h.logger
	}

	if err := r.ParseMultipartForm(int64(h.maxUploadMB) << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, r, err)
			return
		}
		writeError(w, r, badRequest("bad multipart form: %v", err))
		return
	}

	tipo, err := model.ParseAssetType(r.FormValue("tipo"))
	if err != nil {
		writeError(w, r, badRequest("%v", err))
		return
	}
	lote := strings.TrimSpace(r.FormValue("lote"))
	rodovia := strings.TrimSpace(r.FormValue("rodovia"))
	if lote == "" || rodovia == "" {
		writeError(w, r, badRequest("lote and rodovia are required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, badRequest("missing file: %v", err))
		return
	}
	defer file.Close()

	rows, err := fileio.ReadAnyRows(file, header.Filename)
	if err != nil {
		writeError(w, r, badRequest("failed to read %s: %v", header.Filename, err))
		return
	}

	res, err := h.importer.Run(r.Context(), service.ImportRequest{Lote: lote, Rodovia: rodovia, Tipo: tipo, Rows: rows})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)

	log.Info().
		Str("file", header.Filename).
		Str("import_id", res.ImportID).
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(start)).
		Msg("import done")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.workflow.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

type confirmarRequest struct {
	Versao *int `json:"versao"`
}

type rejeitarRequest struct {
	Versao        *int   `json:"versao"`
	Justificativa string `json:"justificativa"`
}

type decisionResponse struct {
	Necessidade model.Necessidade            `json:"necessidade"`
	Decisao     model.ReconciliationDecision `json:"decisao"`
}

func (h *Handler) Confirmar(w http.ResponseWriter, r *http.Request) {
	var req confirmarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Versao == nil {
		writeError(w, r, badRequest("versao is required"))
		return
	}
	r = withActor(r)
	n, d, err := h.workflow.Confirmar(r.Context(), chi.URLParam(r, "id"), *req.Versao)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decisionResponse{Necessidade: n, Decisao: d})
}

func (h *Handler) Rejeitar(w http.ResponseWriter, r *http.Request) {
	var req rejeitarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Versao == nil {
		writeError(w, r, badRequest("versao is required"))
		return
	}
	r = withActor(r)
	n, d, err := h.workflow.Rejeitar(r.Context(), chi.URLParam(r, "id"), *req.Versao, req.Justificativa)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decisionResponse{Necessidade: n, Decisao: d})
}

func (h *Handler) Decisoes(w http.ResponseWriter, r *http.Request) {
	ds, err := h.workflow.Decisions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ds == nil {
		ds = []model.ReconciliationDecision{}
	}
	writeJSON(w, http.StatusOK, ds)
}
