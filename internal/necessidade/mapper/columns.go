package mapper

import (
	"regexp"
	"strings"

	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/sanitize"
)

// Canonical field names. They double as the names reported for missing
// required fields.
const (
	FieldKm               = "km"
	FieldKmInicial        = "km_inicial"
	FieldKmFinal          = "km_final"
	FieldLatitude         = "latitude"
	FieldLongitude        = "longitude"
	FieldLatitudeInicial  = "latitude_inicial"
	FieldLongitudeInicial = "longitude_inicial"
	FieldLatitudeFinal    = "latitude_final"
	FieldLongitudeFinal   = "longitude_final"
	FieldLado             = "lado"
	FieldCodigo           = "codigo"
	FieldTipo             = "tipo"
	FieldCor              = "cor"
	FieldMaterial         = "material"
	FieldQuantidade       = "quantidade"
	FieldExtensao         = "extensao_metros"
	FieldSolucao          = "solucao"
)

// aliases lists the known header spellings per field, already in
// normHeaderKey form.
var aliases = map[string][]string{
	FieldKm:               {"km", "km referencia", "km ref", "quilometro", "marco quilometrico", "km local"},
	FieldKmInicial:        {"km inicial", "km inicio", "km ini", "km de", "inicio", "km i"},
	FieldKmFinal:          {"km final", "km fim", "km ate", "fim", "km f"},
	FieldLatitude:         {"latitude", "lat", "coordenada latitude"},
	FieldLongitude:        {"longitude", "long", "lon", "lng", "coordenada longitude"},
	FieldLatitudeInicial:  {"latitude inicial", "lat inicial", "lat ini", "latitude inicio", "lat i"},
	FieldLongitudeInicial: {"longitude inicial", "long inicial", "lon inicial", "long ini", "longitude inicio", "long i"},
	FieldLatitudeFinal:    {"latitude final", "lat final", "lat fim", "latitude fim", "lat f"},
	FieldLongitudeFinal:   {"longitude final", "long final", "lon final", "long fim", "longitude fim", "long f"},
	FieldLado:             {"lado", "lado da pista", "posicao", "sentido", "bordo", "pista"},
	FieldCodigo:           {"codigo", "cod", "codigo da placa", "codigo placa", "sigla", "codigo dnit"},
	FieldTipo:             {"tipo", "tipo de demarcacao", "tipo demarcacao", "tipo de defensa", "tipo de tacha", "tipo de placa", "modelo", "descricao"},
	FieldCor:              {"cor", "cor da tacha", "cor do refletivo", "cor refletivo"},
	FieldMaterial:         {"material", "tipo de material", "substrato", "pelicula"},
	FieldQuantidade:       {"quantidade", "qtd", "qtde", "quant", "quantidade un", "unidades"},
	FieldExtensao:         {"extensao", "extensao m", "extensao metros", "comprimento", "comprimento m", "metragem"},
	FieldSolucao:          {"solucao", "solucao proposta", "servico", "acao", "intervencao", "solucao planilha"},
}

var (
	pointFields  = []string{FieldKm, FieldLatitude, FieldLongitude}
	linearFields = []string{FieldKmInicial, FieldKmFinal, FieldLatitudeInicial, FieldLongitudeInicial, FieldLatitudeFinal, FieldLongitudeFinal}

	identityFields = map[model.AssetType][]string{
		model.Placas:              {FieldCodigo, FieldTipo, FieldMaterial, FieldQuantidade},
		model.Inscricoes:          {FieldCodigo, FieldTipo, FieldCor, FieldMaterial, FieldQuantidade},
		model.Porticos:            {FieldCodigo, FieldTipo, FieldQuantidade},
		model.MarcasLongitudinais: {FieldCodigo, FieldTipo, FieldCor, FieldMaterial, FieldExtensao},
		model.Cilindros:           {FieldTipo, FieldCor, FieldQuantidade, FieldExtensao},
		model.Defensas:            {FieldTipo, FieldMaterial, FieldExtensao},
		model.Tachas:              {FieldTipo, FieldCor, FieldQuantidade, FieldExtensao},
	}
)

// Fields returns the canonical fields read for an asset type.
func Fields(t model.AssetType) []string {
	out := []string{FieldLado, FieldSolucao}
	if t.IsLinear() {
		out = append(out, linearFields...)
	} else {
		out = append(out, pointFields...)
	}
	return append(out, identityFields[t]...)
}

var rxNonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey folds a header: lowercase, no accents, punctuation to single
// spaces ("Extensão (m)" -> "extensao m").
func normHeaderKey(s string) string {
	s = sanitize.Fold(s)
	s = rxNonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveKey finds the header that carries field among headers not yet
// claimed by another field. An exact alias match wins; otherwise the header
// containing the longest alias (of at least 8 runes, so "km" never captures
// "km inicial") is taken.
func resolveKey(headers []string, field string, claimed map[string]bool) string {
	alts := aliases[field]
	bestKey, bestScore := "", 0
	for _, h := range headers {
		if claimed[h] {
			continue
		}
		nh := normHeaderKey(h)
		for _, a := range alts {
			if nh == a {
				return h
			}
			if n := len([]rune(a)); n >= 8 && n > bestScore && strings.Contains(nh, a) {
				bestScore, bestKey = n, h
			}
		}
	}
	return bestKey
}

// knownHeader reports whether h is an exact alias of any field in fields.
func knownHeader(h string, fields []string) bool {
	nh := normHeaderKey(h)
	if nh == "" {
		return false
	}
	for _, f := range fields {
		for _, a := range aliases[f] {
			if nh == a {
				return true
			}
		}
	}
	return false
}
