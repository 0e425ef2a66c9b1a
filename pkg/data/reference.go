package data

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rafianfasaa/stunting/pkg/growth"
)

const (
	deleteRowsSQL = `DELETE FROM reference_row WHERE sex = ? AND standard = ?`

	insertRowSQL = `INSERT INTO reference_row (sex, standard, month, l, m, s) VALUES (?, ?, ?, ?, ?, ?)`

	upsertImportSQL = `INSERT INTO reference_import (sex, standard, source, row_count, imported_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(sex, standard) DO UPDATE SET
			source = excluded.source,
			row_count = excluded.row_count,
			imported_at = excluded.imported_at`

	selectRowsSQL = `SELECT month, l, m, s FROM reference_row
		WHERE sex = ? AND standard = ?
		ORDER BY month`

	deleteAllRowsSQL    = `DELETE FROM reference_row`
	deleteAllImportsSQL = `DELETE FROM reference_import`

	selectImportsSQL = `SELECT sex, standard, source, row_count, imported_at
		FROM reference_import
		ORDER BY sex, standard`
)

// Import describes the stored copy of one reference table.
type Import struct {
	Sex        growth.Sex      `json:"sex" yaml:"sex"`
	Standard   growth.Standard `json:"standard" yaml:"standard"`
	Source     string          `json:"source" yaml:"source"`
	Rows       int             `json:"rows" yaml:"rows"`
	ImportedAt string          `json:"imported_at" yaml:"imported_at"`
}

// SaveTable replaces the stored rows of t's sex and standard in one transaction.
func SaveTable(db *sql.DB, t *growth.Table, source string) error {
	if db == nil {
		return errDBNotInitialized
	}
	if t == nil {
		return errors.New("table required")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if _, err := tx.Exec(rebind(db, deleteRowsSQL), t.Sex, t.Standard); err != nil {
		return rollback(tx, errors.Wrapf(err, "failed to clear %s/%s rows", t.Sex, t.Standard))
	}

	stmt, err := tx.Prepare(rebind(db, insertRowSQL))
	if err != nil {
		return rollback(tx, errors.Wrap(err, "failed to prepare row insert statement"))
	}
	defer stmt.Close()

	for _, r := range t.Rows() {
		if _, err := stmt.Exec(t.Sex, t.Standard, r.Month, r.L, r.M, r.S); err != nil {
			return rollback(tx, errors.Wrapf(err, "failed to insert %s/%s month %g", t.Sex, t.Standard, r.Month))
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(rebind(db, upsertImportSQL), t.Sex, t.Standard, source, t.Len(), now); err != nil {
		return rollback(tx, errors.Wrap(err, "failed to record import"))
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func rollback(tx *sql.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return errors.Wrapf(err, "rollback failed: %v", rerr)
	}
	return err
}

// GetTable reads the stored table for sex and standard.
func GetTable(db *sql.DB, sex growth.Sex, std growth.Standard) (*growth.Table, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(rebind(db, selectRowsSQL), sex, std)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s/%s rows", sex, std)
	}
	defer rows.Close()

	list := make([]growth.Row, 0)
	for rows.Next() {
		var r growth.Row
		if err := rows.Scan(&r.Month, &r.L, &r.M, &r.S); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate rows")
	}
	if len(list) == 0 {
		return nil, errors.Errorf("no %s/%s reference rows stored, run import first", sex, std)
	}

	return growth.NewTable(sex, std, list)
}

// GetReferenceSet reads all four stored tables.
func GetReferenceSet(db *sql.DB) (*growth.ReferenceSet, error) {
	tables := make([]*growth.Table, 0, 4)
	for _, sex := range growth.Sexes {
		for _, std := range growth.Standards {
			t, err := GetTable(db, sex, std)
			if err != nil {
				return nil, err
			}
			tables = append(tables, t)
		}
	}
	return growth.NewReferenceSet(tables...)
}

// GetImports lists the stored tables.
func GetImports(db *sql.DB) ([]*Import, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectImportsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query imports")
	}
	defer rows.Close()

	list := make([]*Import, 0)
	for rows.Next() {
		i := &Import{}
		if err := rows.Scan(&i.Sex, &i.Standard, &i.Source, &i.Rows, &i.ImportedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan import")
		}
		list = append(list, i)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate imports")
	}
	return list, nil
}

// DeleteAll removes every stored table and returns the number of deleted rows.
func DeleteAll(db *sql.DB) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}

	res, err := tx.Exec(deleteAllRowsSQL)
	if err != nil {
		return 0, rollback(tx, errors.Wrap(err, "failed to delete reference rows"))
	}
	if _, err := tx.Exec(deleteAllImportsSQL); err != nil {
		return 0, rollback(tx, errors.Wrap(err, "failed to delete imports"))
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count deleted rows")
	}
	return n, nil
}
