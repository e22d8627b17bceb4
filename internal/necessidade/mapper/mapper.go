// Package mapper turns spreadsheet records into typed Necessidade
// candidates. Each asset type has its own set of columns, and the location
// variant (point or segment) is checked here, at the boundary.
package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"sinaliza-recon/internal/fileio"
	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/sanitize"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// required-field sets, one per geometry
type pointRequired struct {
	Km *float64 `json:"km" validate:"required"`
}

type linearRequired struct {
	KmInicial *float64 `json:"km_inicial" validate:"required"`
	KmFinal   *float64 `json:"km_final" validate:"required"`
}

// MissingFieldsError lists required fields absent from a row.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "campos obrigatórios ausentes: " + strings.Join(e.Fields, ", ")
}

// Binding maps canonical fields of one asset type to the headers of one
// sheet.
type Binding struct {
	Tipo    model.AssetType
	columns map[string]string
}

// KnownHeader reports whether h is an expected column for t. Used for
// header-row detection.
func KnownHeader(t model.AssetType) func(string) bool {
	fields := Fields(t)
	return func(h string) bool { return knownHeader(h, fields) }
}

// Bind resolves the sheet headers for t. Exact alias matches are bound
// before partial ones.
func Bind(t model.AssetType, headers []string) *Binding {
	b := &Binding{Tipo: t, columns: make(map[string]string)}
	fields := Fields(t)
	claimed := make(map[string]bool)
	// exact pass
	for _, f := range fields {
		for _, h := range headers {
			if !claimed[h] && knownHeader(h, []string{f}) {
				b.columns[f] = h
				claimed[h] = true
				break
			}
		}
	}
	for _, f := range fields {
		if _, ok := b.columns[f]; ok {
			continue
		}
		if h := resolveKey(headers, f, claimed); h != "" {
			b.columns[f] = h
			claimed[h] = true
		}
	}
	return b
}

// Column returns the header bound to field, or "".
func (b *Binding) Column(field string) string { return b.columns[field] }

func (b *Binding) raw(cells map[string]string, field string) any {
	h, ok := b.columns[field]
	if !ok {
		return nil
	}
	return cells[h]
}

// Map converts one record into a candidate. The only error it returns is
// *MissingFieldsError; malformed values are sanitized to nil.
func (b *Binding) Map(rec fileio.Record) (model.Necessidade, error) {
	c := rec.Cells
	n := model.Necessidade{
		Tipo:  b.Tipo,
		Linha: rec.Line,
		Identity: model.Identity{
			Codigo:   sanitize.TextOr(b.raw(c, FieldCodigo), ""),
			Tipo:     sanitize.TextOr(b.raw(c, FieldTipo), ""),
			Cor:      sanitize.TextOr(b.raw(c, FieldCor), ""),
			Material: sanitize.TextOr(b.raw(c, FieldMaterial), ""),
		},
		Lado:            sanitize.TextOr(b.raw(c, FieldLado), ""),
		Quantidade:      sanitize.Number(b.raw(c, FieldQuantidade)),
		ExtensaoMetros:  sanitize.Number(b.raw(c, FieldExtensao)),
		SolucaoPlanilha: sanitize.TextOr(b.raw(c, FieldSolucao), ""),
	}
	n.Servico = ParseService(n.SolucaoPlanilha)

	if b.Tipo.IsLinear() {
		req := linearRequired{
			KmInicial: sanitize.Km(b.raw(c, FieldKmInicial)),
			KmFinal:   sanitize.Km(b.raw(c, FieldKmFinal)),
		}
		if err := check(req); err != nil {
			return n, err
		}
		n.Segment = &model.Segment{
			KmInicial:  *req.KmInicial,
			KmFinal:    *req.KmFinal,
			LatInicial: sanitize.Latitude(b.raw(c, FieldLatitudeInicial)),
			LonInicial: sanitize.Longitude(b.raw(c, FieldLongitudeInicial)),
			LatFinal:   sanitize.Latitude(b.raw(c, FieldLatitudeFinal)),
			LonFinal:   sanitize.Longitude(b.raw(c, FieldLongitudeFinal)),
		}
		return n, nil
	}

	req := pointRequired{Km: sanitize.Km(b.raw(c, FieldKm))}
	if err := check(req); err != nil {
		return n, err
	}
	n.Point = &model.Point{
		Km:  *req.Km,
		Lat: sanitize.Latitude(b.raw(c, FieldLatitude)),
		Lon: sanitize.Longitude(b.raw(c, FieldLongitude)),
	}
	return n, nil
}

func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return &MissingFieldsError{Fields: missing}
}

// ParseService reads the service the spreadsheet author wrote. Unknown text
// gives "".
func ParseService(text string) model.Service {
	s := sanitize.Fold(text)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "remo") || strings.Contains(s, "desativ") || strings.Contains(s, "retirad"):
		return model.Remover
	case strings.Contains(s, "substitu") || strings.Contains(s, "troca") || strings.Contains(s, "repintura") || strings.Contains(s, "renova"):
		return model.Substituir
	case strings.Contains(s, "implant") || strings.Contains(s, "instala") || strings.Contains(s, "novo") || strings.Contains(s, "nova"):
		return model.Implantar
	case strings.Contains(s, "manter") || strings.Contains(s, "manut") || strings.Contains(s, "conserva"):
		return model.Manter
	}
	return ""
}
