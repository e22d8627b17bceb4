package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/store"
)

// Workflow applies manual reconciliation decisions.
//
//	sem_match           no transition
//	pendente_aprovacao  confirmar(tecnico)     -> pendente_aprovacao
//	                    confirmar(coordenador) -> aprovado
//	                    rejeitar(any)          -> rejeitado
//	aprovado/rejeitado  only a coordenador may decide again
//
// Every transition appends a ReconciliationDecision. Callers pass the version
// they read; if the record moved on meanwhile the transition fails with
// ErrStaleRecord instead of overwriting.
type Workflow struct {
	store  DecisionStore
	actors ActorProvider
	clock  Clock
	logger zerolog.Logger
	newID  func() string
}

func NewWorkflow(st DecisionStore, actors ActorProvider, clock Clock, logger zerolog.Logger) *Workflow {
	if actors == nil {
		actors = ContextActors{}
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Workflow{store: st, actors: actors, clock: clock, logger: logger, newID: uuid.NewString}
}

// Confirmar accepts the match as a substitution.
func (w *Workflow) Confirmar(ctx context.Context, id string, versao int) (model.Necessidade, model.ReconciliationDecision, error) {
	return w.transition(ctx, id, versao, model.Confirmado, "")
}

// Rejeitar refuses the match; the asset is treated as new (Implantar).
func (w *Workflow) Rejeitar(ctx context.Context, id string, versao int, justificativa string) (model.Necessidade, model.ReconciliationDecision, error) {
	justificativa = strings.TrimSpace(justificativa)
	if justificativa == "" {
		return model.Necessidade{}, model.ReconciliationDecision{}, ErrJustificationRequired
	}
	return w.transition(ctx, id, versao, model.Recusado, justificativa)
}

// Get returns the current state of a record.
func (w *Workflow) Get(ctx context.Context, id string) (model.Necessidade, error) {
	return w.store.GetNecessidade(ctx, id)
}

// Decisions returns the decision log of a record, oldest first. A record
// whose stored status is not the one its log derives to is logged.
func (w *Workflow) Decisions(ctx context.Context, id string) ([]model.ReconciliationDecision, error) {
	n, err := w.store.GetNecessidade(ctx, id)
	if err != nil {
		return nil, err
	}
	ds, err := w.store.ListDecisions(ctx, id)
	if err != nil {
		return nil, err
	}
	if derived := model.DeriveStatus(n.StatusReconciliacao, ds); derived != n.StatusReconciliacao {
		w.logger.Warn().
			Str("necessidade_id", id).
			Str("status", string(n.StatusReconciliacao)).
			Str("derived", string(derived)).
			Msg("decision log disagrees with record status")
	}
	return ds, nil
}

func (w *Workflow) transition(ctx context.Context, id string, versao int, outcome model.Outcome, just string) (model.Necessidade, model.ReconciliationDecision, error) {
	var d model.ReconciliationDecision

	actor, err := w.actors.Current(ctx)
	if err != nil {
		return model.Necessidade{}, d, err
	}
	n, err := w.store.GetNecessidade(ctx, id)
	if err != nil {
		return model.Necessidade{}, d, err
	}
	if n.Versao != versao {
		return n, d, ErrStaleRecord
	}
	if n.CadastroID == nil || n.StatusReconciliacao == model.SemMatch {
		return n, d, ErrNoMatch
	}
	decided := n.StatusReconciliacao == model.Aprovado || n.StatusReconciliacao == model.Rejeitado
	if decided && actor.Role != model.Coordenador {
		return n, d, ErrForbidden
	}

	next := n
	switch outcome {
	case model.Confirmado:
		next.ServicoFinal = model.Substituir
		next.Reconciliado = true
		next.StatusReconciliacao = model.PendenteAprovacao
		if actor.Role == model.Coordenador {
			next.StatusReconciliacao = model.Aprovado
		}
	case model.Recusado:
		next.ServicoFinal = model.Implantar
		next.Reconciliado = false
		next.StatusReconciliacao = model.Rejeitado
	default:
		return n, d, fmt.Errorf("unknown outcome %q", outcome)
	}
	next.Versao = n.Versao + 1

	d = model.ReconciliationDecision{
		ID:            w.newID(),
		NecessidadeID: n.ID,
		ActorID:       actor.ID,
		Role:          actor.Role,
		Outcome:       outcome,
		Justificativa: just,
		Status:        next.StatusReconciliacao,
		ServicoFinal:  next.ServicoFinal,
		CriadoEm:      w.clock.Now(),
	}

	if err := w.store.ApplyDecision(ctx, next, d, versao); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return n, model.ReconciliationDecision{}, ErrStaleRecord
		}
		return n, model.ReconciliationDecision{}, fmt.Errorf("apply decision: %w", err)
	}

	w.logger.Info().
		Str("necessidade", n.ID).
		Str("actor", actor.ID).
		Str("role", string(actor.Role)).
		Str("outcome", string(outcome)).
		Str("from", string(n.StatusReconciliacao)).
		Str("to", string(next.StatusReconciliacao)).
		Msg("reconciliation decision")
	return next, d, nil
}
