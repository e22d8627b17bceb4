package service

import (
	"fmt"
	"strconv"
	"strings"

	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/sanitize"
)

// Review says whether a classification may stand on its own.
type Review string

const (
	ReviewAuto   Review = "auto"
	ReviewManual Review = "manual"
)

// Classification is the outcome of Classify.
type Classification struct {
	Servico model.Service
	Review  Review
	Motivo  string
	Match   *model.Match
}

// Status maps the classification onto the reconciliation state machine.
func (c Classification) Status() model.Status {
	switch {
	case c.Match == nil:
		return model.SemMatch
	case c.Review == ReviewManual:
		return model.PendenteAprovacao
	default:
		return model.Aprovado
	}
}

// Classify assigns the service for n given its ranked matches. Rules, in
// order:
//
//  1. no match: Implantar, auto
//  2. removal signal (zero quantity/length, "remov"/"desativ" in the
//     spreadsheet solution): Remover, auto, whatever the match quality
//  3. best match parcial: Substituir, manual review with the overlap as reason
//  4. any other best match: Substituir, auto
func Classify(n *model.Necessidade, matches []model.Match) Classification {
	if len(matches) == 0 {
		return Classification{Servico: model.Implantar, Review: ReviewAuto}
	}
	best := matches[0]
	if HasRemovalSignal(n) {
		return Classification{Servico: model.Remover, Review: ReviewAuto, Match: &best}
	}
	if best.Kind == model.Parcial {
		return Classification{
			Servico: model.Substituir,
			Review:  ReviewManual,
			Motivo:  fmt.Sprintf("sobreposição parcial de %s%% com o cadastro", strconv.FormatFloat(best.Score, 'f', -1, 64)),
			Match:   &best,
		}
	}
	return Classification{Servico: model.Substituir, Review: ReviewAuto, Match: &best}
}

// HasRemovalSignal reports an explicit removal in the row: a declared
// quantity or length of zero, or removal wording in the solution column.
func HasRemovalSignal(n *model.Necessidade) bool {
	if n.Quantidade != nil && *n.Quantidade == 0 {
		return true
	}
	if n.ExtensaoMetros != nil && *n.ExtensaoMetros == 0 {
		return true
	}
	s := sanitize.Fold(n.SolucaoPlanilha)
	for _, w := range []string{"remov", "remoc", "desativ"} {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Apply writes c onto n as the import-time result.
func Apply(n *model.Necessidade, c Classification) {
	n.ApplyMatch(c.Match)
	n.ServicoInferido = c.Servico
	n.ServicoFinal = c.Servico
	n.StatusReconciliacao = c.Status()
	n.MotivoRevisao = c.Motivo
	n.Reconciliado = false
}
