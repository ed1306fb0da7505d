package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"cuentas/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRepository persists the tracker state as JSON documents, one
// row per debt record or fixed expense. Writes replace a whole
// collection inside a transaction so readers never observe a partial
// save.
type SQLiteRepository struct {
	db *sql.DB
}

const (
	kindDebtor   = "debtor"
	kindCreditor = "creditor"
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := applyMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

// applyMigrations brings the schema up to date from the embedded SQL
// files. golang-migrate closes the connection it is handed, so it gets
// one of its own rather than sharing the repository's.
func applyMigrations(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database for migrations: %w", err)
	}
	defer db.Close()

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveDebtors replaces the stored debtor collection.
func (r *SQLiteRepository) SaveDebtors(ctx context.Context, records []core.DebtRecordSnapshot) error {
	return r.saveRecords(ctx, kindDebtor, records)
}

// SaveCreditors replaces the stored creditor collection.
func (r *SQLiteRepository) SaveCreditors(ctx context.Context, records []core.DebtRecordSnapshot) error {
	return r.saveRecords(ctx, kindCreditor, records)
}

func (r *SQLiteRepository) saveRecords(ctx context.Context, kind string, records []core.DebtRecordSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save %ss: %w", kind, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM debt_records WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("clear %ss: %w", kind, err)
	}
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO debt_records (id, kind, data, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
			rec.ID, kind, string(data)); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save %ss: %w", kind, err)
	}
	return nil
}

// SaveFixedExpenses replaces the stored fixed expense collection.
func (r *SQLiteRepository) SaveFixedExpenses(ctx context.Context, expenses []core.FixedExpenseSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save expenses: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fixed_expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	for _, exp := range expenses {
		data, err := json.Marshal(exp)
		if err != nil {
			return fmt.Errorf("marshal expense %s: %w", exp.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fixed_expenses (id, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
			exp.ID, string(data)); err != nil {
			return fmt.Errorf("insert expense %s: %w", exp.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save expenses: %w", err)
	}
	return nil
}

// LoadAll reads the full persisted state.
func (r *SQLiteRepository) LoadAll(ctx context.Context) (core.StateSnapshot, error) {
	var snap core.StateSnapshot

	rows, err := r.db.QueryContext(ctx, `SELECT kind, data FROM debt_records ORDER BY rowid`)
	if err != nil {
		return snap, fmt.Errorf("load debt records: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind, data string
		if err := rows.Scan(&kind, &data); err != nil {
			return snap, fmt.Errorf("scan debt record: %w", err)
		}
		var rec core.DebtRecordSnapshot
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return snap, fmt.Errorf("unmarshal debt record: %w", err)
		}
		if kind == kindCreditor {
			snap.Creditors = append(snap.Creditors, rec)
		} else {
			snap.Debtors = append(snap.Debtors, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate debt records: %w", err)
	}

	expRows, err := r.db.QueryContext(ctx, `SELECT data FROM fixed_expenses ORDER BY rowid`)
	if err != nil {
		return snap, fmt.Errorf("load expenses: %w", err)
	}
	defer expRows.Close()
	for expRows.Next() {
		var data string
		if err := expRows.Scan(&data); err != nil {
			return snap, fmt.Errorf("scan expense: %w", err)
		}
		var exp core.FixedExpenseSnapshot
		if err := json.Unmarshal([]byte(data), &exp); err != nil {
			return snap, fmt.Errorf("unmarshal expense: %w", err)
		}
		snap.FixedExpenses = append(snap.FixedExpenses, exp)
	}
	if err := expRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate expenses: %w", err)
	}

	return snap, nil
}
