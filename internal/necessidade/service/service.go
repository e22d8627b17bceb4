package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sinaliza-recon/internal/fileio"
	"sinaliza-recon/internal/necessidade/mapper"
	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/store"
)

// ImportRequest is one spreadsheet to import: raw rows, headers included.
type ImportRequest struct {
	Lote    string
	Rodovia string
	Tipo    model.AssetType
	Rows    [][]string
}

// Accumulator collects the log and counters of one run. The pipeline stages
// never keep state of their own; everything they report lands here.
type Accumulator struct {
	Logs    []model.LogEntry
	Summary model.Summary
	logger  zerolog.Logger
}

func NewAccumulator(logger zerolog.Logger) *Accumulator {
	return &Accumulator{logger: logger}
}

func (a *Accumulator) add(level model.LogLevel, row int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.Logs = append(a.Logs, model.LogEntry{Level: level, Row: row, Message: msg})
	var ev *zerolog.Event
	switch level {
	case model.LogError:
		ev = a.logger.Error()
	case model.LogWarning:
		ev = a.logger.Warn()
	default:
		ev = a.logger.Debug()
	}
	ev.Int("row", row).Msg(msg)
}

// ImportResult is what a run returns to the caller.
type ImportResult struct {
	ImportID     string               `json:"import_id"`
	HeaderRow    int                  `json:"linha_cabecalho"`
	Necessidades []*model.Necessidade `json:"-"`
	Logs         []model.LogEntry     `json:"logs"`
	Summary      model.Summary        `json:"summary"`
}

// Importer runs the import pipeline:
//
//	rows -> mapper (sanitizes) -> matcher -> classifier -> conflict detector -> batched persistence
//
// Rows are handled strictly in spreadsheet order.
type Importer struct {
	store      ImportStore
	tolerances ToleranceSource
	clock      Clock
	logger     zerolog.Logger
	batchSize  int
	newID      func() string
}

type ImporterOption func(*Importer)

func WithBatchSize(n int) ImporterOption {
	return func(im *Importer) {
		if n > 0 {
			im.batchSize = n
		}
	}
}

func WithClock(c Clock) ImporterOption { return func(im *Importer) { im.clock = c } }

func WithIDs(f func() string) ImporterOption { return func(im *Importer) { im.newID = f } }

func NewImporter(st ImportStore, tol ToleranceSource, logger zerolog.Logger, opts ...ImporterOption) *Importer {
	im := &Importer{
		store:      st,
		tolerances: tol,
		clock:      SystemClock,
		logger:     logger,
		batchSize:  store.DefaultBatchSize,
		newID:      uuid.NewString,
	}
	if im.tolerances == nil {
		im.tolerances = FixedTolerance(DefaultToleranceM)
	}
	for _, o := range opts {
		o(im)
	}
	return im
}

// Run imports one spreadsheet. It returns an error only when the run cannot
// start (bad asset type, inventory query failure). Row and batch problems are
// reported in the result log. Cancelling ctx stops the run between rows; the
// rows already processed are still persisted.
func (im *Importer) Run(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if !req.Tipo.Valid() {
		return nil, fmt.Errorf("import: unknown asset type %q", req.Tipo)
	}
	res := &ImportResult{ImportID: im.newID()}
	log := im.logger.With().
		Str("import_id", res.ImportID).
		Str("tipo", string(req.Tipo)).
		Str("lote", req.Lote).
		Str("rodovia", req.Rodovia).
		Logger()
	acc := NewAccumulator(log)

	cad, err := im.store.ListCadastro(ctx, req.Lote, req.Rodovia, req.Tipo)
	if err != nil {
		return nil, fmt.Errorf("import: load cadastro: %w", err)
	}
	inv := NewInventory(req.Tipo, cad)
	tol := im.tolerances.ToleranceFor(req.Rodovia)

	res.HeaderRow = fileio.DetectHeaderRow(req.Rows, mapper.KnownHeader(req.Tipo))
	binding := mapper.Bind(req.Tipo, fileio.Header(req.Rows, res.HeaderRow))
	if missing := unboundRequired(binding); len(missing) > 0 {
		acc.add(model.LogWarning, 0, "colunas obrigatórias não encontradas: %s", strings.Join(missing, ", "))
	}

	valid := im.process(ctx, req, res.ImportID, fileio.Records(req.Rows, res.HeaderRow), binding, inv, tol, acc)

	// persistence runs to completion even after a cancel: processed rows
	// are part of the reported result
	pctx := context.WithoutCancel(ctx)
	// earlier runs stay active unless this one actually wrote something
	if im.persist(pctx, valid, acc) > 0 {
		if err := im.store.MarkSuperseded(pctx, req.Lote, req.Rodovia, req.Tipo, res.ImportID); err != nil {
			acc.add(model.LogError, 0, "falha ao marcar importações anteriores como substituídas: %v", err)
		}
	}

	if err := acc.Summary.Check(); err != nil {
		log.Error().Err(err).Msg("summary does not reconcile")
	}
	log.Info().
		Int("lidas", acc.Summary.Read).
		Int("sucessos", acc.Summary.Successes).
		Int("falhas", acc.Summary.Failures).
		Int("conflitos", acc.Summary.Conflicts).
		Bool("cancelada", acc.Summary.Cancelled).
		Int("cadastro", inv.Len()).
		Msg("import done")

	res.Necessidades = valid
	res.Logs = acc.Logs
	res.Summary = acc.Summary
	return res, nil
}

func (im *Importer) process(ctx context.Context, req ImportRequest, importID string, recs []fileio.Record, b *mapper.Binding, inv *Inventory, tol float64, acc *Accumulator) []*model.Necessidade {
	detector := NewConflictDetector()
	now := im.clock.Now()
	var valid []*model.Necessidade

	for _, rec := range recs {
		if ctx.Err() != nil {
			acc.Summary.Cancelled = true
			acc.add(model.LogWarning, 0, "importação cancelada após %d linha(s)", acc.Summary.Read)
			break
		}
		acc.Summary.Read++

		if rec.Empty {
			acc.Summary.Skipped++
			acc.Summary.SkippedEmpty++
			continue
		}

		cand, err := b.Map(rec)
		if err != nil {
			acc.Summary.Skipped++
			acc.Summary.SkippedInvalid++
			acc.add(model.LogWarning, rec.Line, "linha ignorada: %v", err)
			continue
		}
		n := &cand
		n.ID = im.newID()
		n.ImportID = importID
		n.Lote, n.Rodovia = req.Lote, req.Rodovia
		n.CriadoEm = now
		n.Versao = 1

		Apply(n, Classify(n, Match(n, inv, tol)))

		if c := detector.Observe(n); c != nil {
			acc.add(model.LogWarning, rec.Line, "%s com a linha %d (%s x %s)",
				c.Kind, c.Primary.Linha, c.Secondary.ServicoInferido, c.Primary.ServicoInferido)
		}

		acc.Summary.Valid++
		valid = append(valid, n)
	}
	return valid
}

// persist writes valid in fixed-size batches and returns how many rows were
// committed. A failed batch fails all its rows and the run moves on to the
// next batch.
func (im *Importer) persist(ctx context.Context, valid []*model.Necessidade, acc *Accumulator) int {
	written := 0
	for start := 0; start < len(valid); start += im.batchSize {
		end := min(start+im.batchSize, len(valid))
		batch := make([]model.Necessidade, 0, end-start)
		for _, n := range valid[start:end] {
			batch = append(batch, *n)
		}

		if err := im.store.UpsertNecessidades(ctx, batch); err != nil {
			for _, n := range valid[start:end] {
				acc.Summary.Failures++
				acc.add(model.LogError, n.Linha, "falha ao gravar: %v", err)
			}
			continue
		}
		for _, n := range valid[start:end] {
			acc.Summary.Successes++
			if n.HasConflict() {
				acc.Summary.Conflicts++
			}
			acc.add(model.LogSuccess, n.Linha, "%s", describe(n))
		}
		written += end - start
	}
	return written
}

func describe(n *model.Necessidade) string {
	switch {
	case n.CadastroID == nil:
		return fmt.Sprintf("%s (sem correspondência no cadastro)", n.ServicoFinal)
	case n.MotivoRevisao != "":
		return fmt.Sprintf("%s (%s, %s)", n.ServicoFinal, n.StatusReconciliacao, n.MotivoRevisao)
	default:
		return fmt.Sprintf("%s (%s, cadastro %s)", n.ServicoFinal, n.StatusReconciliacao, *n.CadastroID)
	}
}

func unboundRequired(b *mapper.Binding) []string {
	req := []string{mapper.FieldKm}
	if b.Tipo.IsLinear() {
		req = []string{mapper.FieldKmInicial, mapper.FieldKmFinal}
	}
	var missing []string
	for _, f := range req {
		if b.Column(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
