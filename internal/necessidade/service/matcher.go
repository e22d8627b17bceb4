package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"sinaliza-recon/internal/geo"
	"sinaliza-recon/internal/necessidade/model"
)

// Match thresholds for linear assets, in percent of the necessidade length.
const (
	MinOverlapPct   = 50.0
	AltoOverlapPct  = 75.0
	ExatoOverlapPct = 95.0

	DefaultToleranceM = 50.0
)

// Match ranks the inventory items that may be the asset n refers to. Point
// assets are scored by distance (meters, ascending, at most toleranceM);
// linear assets by overlap percentage (descending, at least MinOverlapPct).
// Side compatibility is a hard filter. No match is an empty result.
func Match(n *model.Necessidade, inv *Inventory, toleranceM float64) []model.Match {
	if inv == nil || n.Tipo != inv.tipo {
		return nil
	}
	if n.Tipo.IsLinear() {
		return matchLinear(n, inv)
	}
	return matchPoint(n, inv, toleranceM)
}

func matchPoint(n *model.Necessidade, inv *Inventory, toleranceM float64) []model.Match {
	if n.Point == nil || n.Point.Lat == nil || n.Point.Lon == nil {
		return nil
	}
	var out []model.Match
	for _, c := range inv.candidates(n) {
		if c.Point.Lat == nil || c.Point.Lon == nil {
			continue
		}
		if !n.Tipo.SideCompatible(n.Lado, c.Lado) {
			continue
		}
		d := geo.Distance(*n.Point.Lat, *n.Point.Lon, *c.Point.Lat, *c.Point.Lon)
		if d > toleranceM {
			continue
		}
		out = append(out, model.Match{CadastroID: c.ID, Score: round(d, 2), Kind: model.Proximidade})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].CadastroID < out[j].CadastroID
	})
	return out
}

func matchLinear(n *model.Necessidade, inv *Inventory) []model.Match {
	if n.Segment == nil {
		return nil
	}
	var out []model.Match
	for _, c := range inv.candidates(n) {
		if !n.Tipo.SideCompatible(n.Lado, c.Lado) {
			continue
		}
		_, pct := geo.Overlap(n.Segment.KmInicial, n.Segment.KmFinal, c.Segment.KmInicial, c.Segment.KmFinal)
		if pct < MinOverlapPct {
			continue
		}
		out = append(out, model.Match{CadastroID: c.ID, Score: pct, Kind: overlapKind(pct)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CadastroID < out[j].CadastroID
	})
	return out
}

func overlapKind(pct float64) model.MatchKind {
	switch {
	case pct >= ExatoOverlapPct:
		return model.Exato
	case pct >= AltoOverlapPct:
		return model.Alto
	default:
		return model.Parcial
	}
}

func round(f float64, places int32) float64 {
	out, _ := decimal.NewFromFloat(f).Round(places).Float64()
	return out
}
