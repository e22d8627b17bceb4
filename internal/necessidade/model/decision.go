package model

import (
	"fmt"
	"time"
)

// Role of the actor applying a reconciliation decision.
type Role string

const (
	Tecnico     Role = "tecnico"
	Coordenador Role = "coordenador"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case Tecnico, Coordenador:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Outcome of a manual decision.
type Outcome string

const (
	Confirmado Outcome = "confirmado"
	Recusado   Outcome = "rejeitado"
)

// ReconciliationDecision is one append-only entry of the decision log.
type ReconciliationDecision struct {
	ID            string    `json:"id"`
	NecessidadeID string    `json:"necessidade_id"`
	ActorID       string    `json:"actor_id"`
	Role          Role      `json:"role"`
	Outcome       Outcome   `json:"outcome"`
	Justificativa string    `json:"justificativa,omitempty"`
	Status        Status    `json:"status"`
	ServicoFinal  Service   `json:"servico_final"`
	CriadoEm      time.Time `json:"criado_em"`
}

// DeriveStatus returns the state a record should have given its decision
// log: the latest decision wins, and with no decisions the import-time state
// stands. Transitions store the status directly; this is the audit check.
func DeriveStatus(initial Status, decisions []ReconciliationDecision) Status {
	if len(decisions) == 0 {
		return initial
	}
	latest := decisions[0]
	for _, d := range decisions[1:] {
		if !d.CriadoEm.Before(latest.CriadoEm) {
			latest = d
		}
	}
	return latest.Status
}
