package service

import (
	"sort"

	"sinaliza-recon/internal/necessidade/model"
)

// Inventory indexes the cadastro of one (lote, rodovia, tipo) for repeated
// matching during an import run.
type Inventory struct {
	tipo  model.AssetType
	items []model.CadastroItem // linear: sorted by segment start
}

// NewInventory keeps the items of tipo whose location fits its geometry.
func NewInventory(tipo model.AssetType, items []model.CadastroItem) *Inventory {
	inv := &Inventory{tipo: tipo}
	g := tipo.Geometry()
	for _, it := range items {
		if it.Tipo == tipo && it.Location.Fits(g) {
			inv.items = append(inv.items, it)
		}
	}
	if tipo.IsLinear() {
		sort.SliceStable(inv.items, func(i, j int) bool {
			return segStart(inv.items[i].Segment) < segStart(inv.items[j].Segment)
		})
	}
	return inv
}

func (inv *Inventory) Len() int { return len(inv.items) }

// candidates returns the items worth scoring for n. For linear assets the
// items starting at or after the end of n's interval are cut off.
func (inv *Inventory) candidates(n *model.Necessidade) []model.CadastroItem {
	if !inv.tipo.IsLinear() || n.Segment == nil {
		return inv.items
	}
	end := segEnd(n.Segment)
	k := sort.Search(len(inv.items), func(i int) bool {
		return segStart(inv.items[i].Segment) >= end
	})
	return inv.items[:k]
}

func segStart(s *model.Segment) float64 {
	if s.KmFinal < s.KmInicial {
		return s.KmFinal
	}
	return s.KmInicial
}

func segEnd(s *model.Segment) float64 {
	if s.KmFinal < s.KmInicial {
		return s.KmInicial
	}
	return s.KmFinal
}
