// Package sqlite is the single-file record store, backed by modernc.org/sqlite
// through database/sql. Each upsert batch runs in its own transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"sinaliza-recon/internal/necessidade/model"
	"sinaliza-recon/internal/store"
)

type Store struct {
	db *sql.DB
}

// Open connects to dsn ("recon.db", "file:recon.db?_pragma=busy_timeout(5000)",
// ":memory:") and creates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer; also keeps a :memory: database alive across calls
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) ListCadastro(ctx context.Context, lote, rodovia string, tipo model.AssetType) ([]model.CadastroItem, error) {
	q := store.SelectSQL(store.TableCadastro, store.CadastroColumns, "WHERE lote = ? AND rodovia = ? AND tipo = ? ORDER BY id")
	rows, err := s.db.QueryContext(ctx, q, lote, rodovia, string(tipo))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list cadastro: %w", err)
	}
	defer rows.Close()

	var out []model.CadastroItem
	for rows.Next() {
		c, err := store.ScanCadastro(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan cadastro: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertCadastro loads inventory items, replacing items with the same id.
func (s *Store) UpsertCadastro(ctx context.Context, items []model.CadastroItem) error {
	q := store.InsertSQL(store.TableCadastro, store.CadastroColumns, "id", store.Question)
	return s.inTx(ctx, q, len(items), func(i int) ([]any, error) { return store.CadastroArgs(items[i]) })
}

func (s *Store) MarkSuperseded(ctx context.Context, lote, rodovia string, tipo model.AssetType, keepImportID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE necessidades SET substituida = 1 WHERE lote = ? AND rodovia = ? AND tipo = ? AND import_id <> ?`,
		lote, rodovia, string(tipo), keepImportID)
	if err != nil {
		return fmt.Errorf("sqlite: mark superseded: %w", err)
	}
	return nil
}

// UpsertNecessidades writes batch atomically.
func (s *Store) UpsertNecessidades(ctx context.Context, batch []model.Necessidade) error {
	q := store.InsertSQL(store.TableNecessidades, store.NecessidadeColumns, "id", store.Question)
	return s.inTx(ctx, q, len(batch), func(i int) ([]any, error) { return store.NecessidadeArgs(batch[i]) })
}

func (s *Store) GetNecessidade(ctx context.Context, id string) (model.Necessidade, error) {
	q := store.SelectSQL(store.TableNecessidades, store.NecessidadeColumns, "WHERE id = ?")
	n, err := store.ScanNecessidade(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return n, store.ErrNotFound
	}
	if err != nil {
		return n, fmt.Errorf("sqlite: get necessidade: %w", err)
	}
	return n, nil
}

// ApplyDecision saves the decided state of n and appends d, provided the
// stored version is still expectedVersion.
func (s *Store) ApplyDecision(ctx context.Context, n model.Necessidade, d model.ReconciliationDecision, expectedVersion int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE necessidades
		    SET servico_final = ?, reconciliado = ?, status_reconciliacao = ?, versao = ?
		  WHERE id = ? AND versao = ?`,
		string(n.ServicoFinal), n.Reconciliado, string(n.StatusReconciliacao), n.Versao, n.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("sqlite: update necessidade: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM necessidades WHERE id = ?`, n.ID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return store.ErrVersionConflict
	}

	q := store.InsertSQL(store.TableDecisoes, store.DecisionColumns, "", store.Question)
	if _, err := tx.ExecContext(ctx, q, store.DecisionArgs(d)...); err != nil {
		return fmt.Errorf("sqlite: insert decision: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (s *Store) ListDecisions(ctx context.Context, necessidadeID string) ([]model.ReconciliationDecision, error) {
	q := store.SelectSQL(store.TableDecisoes, store.DecisionColumns, "WHERE necessidade_id = ? ORDER BY criado_em, id")
	rows, err := s.db.QueryContext(ctx, q, necessidadeID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list decisions: %w", err)
	}
	defer rows.Close()

	var out []model.ReconciliationDecision
	for rows.Next() {
		d, err := store.ScanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// inTx runs the prepared statement q once per row inside one transaction.
func (s *Store) inTx(ctx context.Context, q string, n int, args func(i int) ([]any, error)) error {
	if n == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		a, err := args(i)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, a...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}
