package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinaliza-recon/internal/necessidade/model"
)

func TestCadastroFromRows(t *testing.T) {
	rows := [][]string{
		{"Km", "Código", "Lado", "Latitude", "Longitude"},
		{"10,000", "R-19", "LD", "-23,5", "-46,6"},
		{"", "", "", "", ""},
		{"N/A", "R-1", "LE", "", ""},
	}
	items, logs := CadastroFromRows("L1", "BR-101", model.Placas, rows)
	require.Len(t, items, 1)
	c := items[0]
	assert.Equal(t, "R-19", c.Codigo)
	assert.Equal(t, "L1", c.Lote)
	require.NotNil(t, c.Point)
	assert.Equal(t, -23.5, *c.Point.Lat)

	require.Len(t, logs, 1)
	assert.Equal(t, 4, logs[0].Row)

	again, _ := CadastroFromRows("L1", "BR-101", model.Placas, rows)
	assert.Equal(t, c.ID, again[0].ID)
	other, _ := CadastroFromRows("L2", "BR-101", model.Placas, rows)
	assert.NotEqual(t, c.ID, other[0].ID)
}
