package geo

import (
	"strings"

	"sinaliza-recon/internal/sanitize"
)

// Canonical side-of-road values.
const (
	SideEsquerdo = "esquerdo"
	SideDireito  = "direito"
	SideEixo     = "eixo"
	SideAmbos    = "ambos"
)

// SidePolicy says how strictly an asset type compares sides.
type SidePolicy int

const (
	// SideIgnored skips side validation.
	SideIgnored SidePolicy = iota
	// SideExact requires the same canonical side.
	SideExact
	// SideAmbosWildcard requires the same side unless either record says "ambos".
	SideAmbosWildcard
)

var sideAbbrev = map[string]string{
	"e": SideEsquerdo, "le": SideEsquerdo, "esq": SideEsquerdo, "bordo esquerdo": SideEsquerdo,
	"d": SideDireito, "ld": SideDireito, "dir": SideDireito, "bordo direito": SideDireito,
	"c": SideEixo, "ex": SideEixo, "centro": SideEixo, "canteiro central": SideEixo,
	"a": SideAmbos, "ae": SideAmbos, "le/ld": SideAmbos, "ld/le": SideAmbos, "e/d": SideAmbos, "d/e": SideAmbos,
}

// NormalizeSide maps free-text or abbreviated side values to one of
// esquerdo, direito, eixo or ambos. Empty input stays empty; values that
// match nothing are returned unchanged.
func NormalizeSide(raw string) string {
	s := sanitize.Fold(raw)
	if s == "" {
		return ""
	}
	if v, ok := sideAbbrev[s]; ok {
		return v
	}
	hasEsq := strings.Contains(s, "esq")
	hasDir := strings.Contains(s, "dir")
	switch {
	case strings.Contains(s, "ambo") || strings.Contains(s, "ambas") || (hasEsq && hasDir):
		return SideAmbos
	case hasEsq:
		return SideEsquerdo
	case hasDir:
		return SideDireito
	case strings.Contains(s, "eixo") || strings.Contains(s, "centr"):
		return SideEixo
	}
	return raw
}

// SideKey is NormalizeSide for comparisons: unmapped values are folded, so
// "Crescente" and "crescente" compare equal.
func SideKey(raw string) string {
	return sanitize.Fold(NormalizeSide(raw))
}

// SideIsCompatible applies policy to two raw side values. A missing side on
// either record is always compatible.
func SideIsCompatible(policy SidePolicy, necSide, cadSide string) bool {
	n, c := SideKey(necSide), SideKey(cadSide)
	if n == "" || c == "" {
		return true
	}
	switch policy {
	case SideExact:
		return n == c
	case SideAmbosWildcard:
		return n == SideAmbos || c == SideAmbos || n == c
	default:
		return true
	}
}
