package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/necessidade/service"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCadastroThenImport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(dir, "recon.db"))
	t.Setenv("LOG_FILE", filepath.Join(dir, "recon.log"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TOLERANCE_FILE", "")

	cad := filepath.Join(dir, "cadastro.csv")
	require.NoError(t, os.WriteFile(cad, []byte("Km Inicial;Km Final;Lado\n10,18;12;LD\n"), 0o644))
	nec := filepath.Join(dir, "projeto.csv")
	require.NoError(t, os.WriteFile(nec, []byte("Km Inicial;Km Final;Lado\n10;11;LD\n30;31;LD\n"), 0o644))

	out := execute(t, "cadastro", "--env-file", filepath.Join(dir, "none.env"),
		"-f", cad, "-t", "defensas", "--lote", "L1", "--rodovia", "BR-101")
	assert.Contains(t, out, "1 item(s) loaded")

	out = execute(t, "import", "--env-file", filepath.Join(dir, "none.env"),
		"-f", nec, "-t", "defensas", "--lote", "L1", "--rodovia", "BR-101")
	var res service.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.ImportID)
	assert.Equal(t, 2, res.Summary.Successes)
	require.NoError(t, res.Summary.Check())

	var msgs []string
	for _, l := range res.Logs {
		if l.Level == model.LogSuccess {
			msgs = append(msgs, l.Message)
		}
	}
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "Substituir")
	assert.Contains(t, msgs[1], "Implantar")
}
