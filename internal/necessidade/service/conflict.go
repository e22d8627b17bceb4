package service

import (
	"sinaliza-recon/internal/necessidade/model"
)

// Conflict is one flag raised by the detector. Secondary is the row that
// raised it; Primary is the earlier row it clashes with.
type Conflict struct {
	Kind      model.ConflictKind
	Severity  model.Severity
	Primary   *model.Necessidade
	Secondary *model.Necessidade
}

// ConflictDetector finds rows of one import run that put contradictory or
// duplicate services on the same position.
//
// It is stateful and order-sensitive: rows must be observed in spreadsheet
// order, and the first row seen at a key is the primary of any duplicate
// pair. Feeding the same rows in another order yields different (but still
// single) flags. Annotations never remove a row from the run.
type ConflictDetector struct {
	history map[string][]*model.Necessidade
}

func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{history: make(map[string][]*model.Necessidade)}
}

// Observe registers n (already classified) and returns the flag it raises,
// if any. Both rows of a flagged pair get a cross-referencing annotation.
func (d *ConflictDetector) Observe(n *model.Necessidade) *Conflict {
	key := ConflictKey(n)
	hist := d.history[key]
	d.history[key] = append(hist, n)
	if len(hist) == 0 {
		return nil
	}

	var c *Conflict
	for _, prev := range hist {
		if contradictory(prev.ServicoInferido, n.ServicoInferido) {
			c = &Conflict{Kind: model.ServicoContraditorio, Severity: model.Critica, Primary: prev, Secondary: n}
			break
		}
	}
	if c == nil && n.ServicoInferido == hist[0].ServicoInferido {
		c = &Conflict{Kind: model.DuplicataProjeto, Severity: model.Moderada, Primary: hist[0], Secondary: n}
	}
	if c == nil {
		return nil
	}

	c.Secondary.Conflitos = append(c.Secondary.Conflitos, model.ConflictAnnotation{
		Tipo:               c.Kind,
		Severidade:         c.Severity,
		LinhaConflitante:   c.Primary.Linha,
		ServicoAtual:       c.Secondary.ServicoInferido,
		ServicoConflitante: c.Primary.ServicoInferido,
	})
	c.Primary.Conflitos = append(c.Primary.Conflitos, model.ConflictAnnotation{
		Tipo:               c.Kind,
		Severidade:         c.Severity,
		LinhaConflitante:   c.Secondary.Linha,
		ServicoAtual:       c.Primary.ServicoInferido,
		ServicoConflitante: c.Secondary.ServicoInferido,
	})
	return c
}

func contradictory(a, b model.Service) bool {
	return (a == model.Implantar && b == model.Remover) || (a == model.Remover && b == model.Implantar)
}
