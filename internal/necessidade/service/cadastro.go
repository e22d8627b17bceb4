package service

import (
	"fmt"

	"github.com/google/uuid"

	"sinaliza-recon/internal/fileio"
	"sinaliza-recon/internal/necessidade/mapper"
	"sinaliza-recon/internal/necessidade/model"
)

// cadastroNS scopes the ids of inventory rows loaded from spreadsheets.
var cadastroNS = uuid.MustParse("6f1c2a52-3f0e-4d39-9d7e-5b8a3c1e9a40")

// CadastroFromRows reads a field-survey spreadsheet with the same column
// aliases as project spreadsheets. Ids are derived from scope and line, so
// loading the same sheet twice replaces instead of duplicating.
func CadastroFromRows(lote, rodovia string, tipo model.AssetType, rows [][]string) ([]model.CadastroItem, []model.LogEntry) {
	headerRow := fileio.DetectHeaderRow(rows, mapper.KnownHeader(tipo))
	b := mapper.Bind(tipo, fileio.Header(rows, headerRow))

	var (
		items []model.CadastroItem
		logs  []model.LogEntry
	)
	for _, rec := range fileio.Records(rows, headerRow) {
		if rec.Empty {
			continue
		}
		n, err := b.Map(rec)
		if err != nil {
			logs = append(logs, model.LogEntry{Level: model.LogWarning, Row: rec.Line, Message: err.Error()})
			continue
		}
		key := fmt.Sprintf("%s|%s|%s|%d", lote, rodovia, tipo, rec.Line)
		items = append(items, model.CadastroItem{
			ID:       uuid.NewSHA1(cadastroNS, []byte(key)).String(),
			Lote:     lote,
			Rodovia:  rodovia,
			Tipo:     tipo,
			Identity: n.Identity,
			Location: n.Location,
			Lado:     n.Lado,
		})
	}
	return items, logs
}
