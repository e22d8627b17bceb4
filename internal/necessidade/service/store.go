package service

import (
	"context"
	"errors"
	"time"

	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/store"
)

var (
	ErrNotFound              = store.ErrNotFound
	ErrStaleRecord           = errors.New("record was changed by someone else; reload it")
	ErrNoMatch               = errors.New("record has no cadastro match; nothing to reconcile")
	ErrJustificationRequired = errors.New("a justification is required to reject a match")
	ErrForbidden             = errors.New("only a coordinator can change a decided record")
	ErrInvalidRole           = errors.New("invalid actor role")
)

// CadastroReader queries the field inventory.
type CadastroReader interface {
	ListCadastro(ctx context.Context, lote, rodovia string, tipo model.AssetType) ([]model.CadastroItem, error)
}

// NecessidadeWriter persists import results. UpsertNecessidades is atomic
// per call.
type NecessidadeWriter interface {
	MarkSuperseded(ctx context.Context, lote, rodovia string, tipo model.AssetType, keepImportID string) error
	UpsertNecessidades(ctx context.Context, batch []model.Necessidade) error
}

// ImportStore is what an import run needs.
type ImportStore interface {
	CadastroReader
	NecessidadeWriter
}

// DecisionStore is what the reconciliation workflow needs. ApplyDecision
// saves n and appends d only if the stored version still equals
// expectedVersion, otherwise it returns store.ErrVersionConflict.
type DecisionStore interface {
	GetNecessidade(ctx context.Context, id string) (model.Necessidade, error)
	ApplyDecision(ctx context.Context, n model.Necessidade, d model.ReconciliationDecision, expectedVersion int) error
	ListDecisions(ctx context.Context, necessidadeID string) ([]model.ReconciliationDecision, error)
}

// Clock supplies timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock in UTC.
var SystemClock = ClockFunc(func() time.Time { return time.Now().UTC() })

// ToleranceSource gives the point-asset match tolerance of a highway.
type ToleranceSource interface {
	ToleranceFor(rodovia string) float64
}

// FixedTolerance is a ToleranceSource with one value for every highway.
type FixedTolerance float64

func (f FixedTolerance) ToleranceFor(string) float64 { return float64(f) }

// ActorProvider tells who is acting.
type ActorProvider interface {
	Current(ctx context.Context) (model.Actor, error)
}

type actorKey struct{}

// WithActor stores the acting user in ctx for ContextActors.
func WithActor(ctx context.Context, a model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ContextActors reads the actor placed by WithActor.
type ContextActors struct{}

func (ContextActors) Current(ctx context.Context) (model.Actor, error) {
	a, ok := ctx.Value(actorKey{}).(model.Actor)
	if !ok || a.ID == "" {
		return model.Actor{}, ErrInvalidRole
	}
	if _, err := model.ParseRole(string(a.Role)); err != nil {
		return model.Actor{}, ErrInvalidRole
	}
	return a, nil
}
