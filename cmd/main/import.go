package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"sinaliza-recon/internal/fileio"
	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/necessidade/service"
)

type scopeFlags struct {
	file    string
	tipo    string
	lote    string
	rodovia string
}

func (f *scopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "spreadsheet (.xlsx, .xls, .csv)")
	cmd.Flags().StringVarP(&f.tipo, "tipo", "t", "", "asset type (placas, inscricoes, porticos, marcas_longitudinais, cilindros, defensas, tachas)")
	cmd.Flags().StringVar(&f.lote, "lote", "", "contract lot")
	cmd.Flags().StringVar(&f.rodovia, "rodovia", "", "highway, e.g. BR-101")
	for _, name := range []string{"file", "tipo", "lote", "rodovia"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func (f *scopeFlags) read() (model.AssetType, [][]string, error) {
	tipo, err := model.ParseAssetType(f.tipo)
	if err != nil {
		return "", nil, err
	}
	fh, err := os.Open(f.file)
	if err != nil {
		return "", nil, err
	}
	defer fh.Close()
	rows, err := fileio.ReadAnyRows(fh, filepath.Base(f.file))
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", f.file, err)
	}
	return tipo, rows, nil
}

var (
	importFlags scopeFlags
	importCmd   = &cobra.Command{
		Use:   "import",
		Short: "Import a project spreadsheet and print the run result as JSON",
		Long: `Import reads one project spreadsheet, reconciles every row against the
cadastro of the same lote, rodovia and asset type, stores the result and
prints {import_id, logs, summary}. Ctrl-C stops between rows; rows already
processed are still stored.`,
		RunE: runImport,
	}

	cadastroFlags scopeFlags
	cadastroCmd   = &cobra.Command{
		Use:   "cadastro",
		Short: "Load a field-survey spreadsheet into the cadastro",
		RunE:  runCadastro,
	}
)

func init() {
	importFlags.register(importCmd)
	cadastroFlags.register(cadastroCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	tipo, rows, err := importFlags.read()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, st, closeStore, err := setup(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	im, err := newImporter(cfg, st, logger)
	if err != nil {
		return err
	}
	res, err := im.Run(ctx, service.ImportRequest{Lote: importFlags.lote, Rodovia: importFlags.rodovia, Tipo: tipo, Rows: rows})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if res.Summary.Failures > 0 {
		return fmt.Errorf("%d row(s) failed to persist", res.Summary.Failures)
	}
	return nil
}

func runCadastro(cmd *cobra.Command, args []string) error {
	tipo, rows, err := cadastroFlags.read()
	if err != nil {
		return err
	}
	_, logger, st, closeStore, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	items, logs := service.CadastroFromRows(cadastroFlags.lote, cadastroFlags.rodovia, tipo, rows)
	for _, l := range logs {
		logger.Warn().Int("row", l.Row).Msg(l.Message)
	}
	if err := st.UpsertCadastro(cmd.Context(), items); err != nil {
		return fmt.Errorf("store cadastro: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d item(s) loaded, %d row(s) skipped\n", len(items), len(logs))
	return nil
}
