package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/pressly/goose/v3"
)

// Info summarises the database for `data info`.
type Info struct {
	FilePath string           `json:"filePath"`
	Versions []int64          `json:"versions"`
	Counts   map[string]int64 `json:"counts"`
}

// JSONIssue names a JSON column that no longer parses.
type JSONIssue struct {
	Table  string `json:"table"`
	RowID  string `json:"rowId"`
	Column string `json:"column"`
}

// ForeignKeyIssue is one row reported by PRAGMA foreign_key_check.
type ForeignKeyIssue struct {
	Table  string `json:"table"`
	RowID  *int64 `json:"rowid"`
	Parent string `json:"parent"`
	FKID   int64  `json:"fkid"`
}

// DoctorReport is the result of a consistency check.
type DoctorReport struct {
	FilePath          string            `json:"filePath"`
	OK                bool              `json:"ok"`
	Integrity         []string          `json:"integrity"`
	ForeignKeyIssues  []ForeignKeyIssue `json:"foreignKeyIssues"`
	MissingTables     []string          `json:"missingTables"`
	MigrationVersions []int64           `json:"migrationVersions"`
	JSONIssues        []JSONIssue       `json:"jsonIssues"`
}

// RepairReport extends the post-repair doctor report with what was changed.
type RepairReport struct {
	Repaired           bool    `json:"repaired"`
	BackupPath         *string `json:"backupPath"`
	RepairedJSONFields int     `json:"repairedJsonFields"`
	DoctorReport
}

// jsonColumns are the TEXT columns holding JSON documents.
var jsonColumns = []struct {
	table  string
	column string
}{
	{"clubs", "reminder_policy_json"},
	{"clubs", "reminder_templates_json"},
	{"notifications", "payload_json"},
}

// Info reports applied migration versions and row counts per entity table.
func (s *Store) Info(ctx context.Context) (Info, error) {
	versions, err := s.appliedVersions(ctx)
	if err != nil {
		return Info{}, err
	}
	counts := make(map[string]int64, len(entityTables))
	for _, table := range entityTables {
		var total int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&total); err != nil {
			return Info{}, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = total
	}
	return Info{FilePath: s.path, Versions: versions, Counts: counts}, nil
}

// Doctor runs integrity and foreign-key checks and looks for missing tables
// and unparsable JSON columns.
func (s *Store) Doctor(ctx context.Context) (DoctorReport, error) {
	report := DoctorReport{
		FilePath:         s.path,
		Integrity:        []string{},
		ForeignKeyIssues: []ForeignKeyIssue{},
		MissingTables:    []string{},
		JSONIssues:       []JSONIssue{},
	}

	rows, err := s.db.QueryContext(ctx, "PRAGMA integrity_check")
	if err != nil {
		return report, fmt.Errorf("integrity check: %w", err)
	}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			rows.Close()
			return report, fmt.Errorf("scan integrity check: %w", err)
		}
		report.Integrity = append(report.Integrity, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("integrity check: %w", err)
	}

	if report.ForeignKeyIssues, err = s.foreignKeyIssues(ctx); err != nil {
		return report, err
	}

	for _, table := range entityTables {
		exists, err := s.tableExists(ctx, table)
		if err != nil {
			return report, err
		}
		if !exists {
			report.MissingTables = append(report.MissingTables, table)
		}
	}

	if report.MigrationVersions, err = s.appliedVersions(ctx); err != nil {
		return report, err
	}

	for _, col := range jsonColumns {
		if slices.Contains(report.MissingTables, col.table) {
			continue
		}
		ids, err := s.invalidJSONRows(ctx, col.table, col.column)
		if err != nil {
			return report, err
		}
		for _, id := range ids {
			report.JSONIssues = append(report.JSONIssues, JSONIssue{Table: col.table, RowID: id, Column: col.column})
		}
	}

	report.OK = len(report.Integrity) == 1 && report.Integrity[0] == "ok" &&
		len(report.ForeignKeyIssues) == 0 &&
		len(report.MissingTables) == 0 &&
		len(report.JSONIssues) == 0
	return report, nil
}

// Repair backs the database up, resets unparsable JSON columns to an empty
// object, compacts the file and re-runs Doctor.
func (s *Store) Repair(ctx context.Context) (RepairReport, error) {
	var report RepairReport
	if !s.inMemory() {
		backup := s.path + ".bak." + strconv.FormatInt(s.now().UnixMilli(), 10)
		if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", backup); err != nil {
			return report, fmt.Errorf("backup database: %w", err)
		}
		report.BackupPath = &backup
	}

	present := map[string]bool{}
	for _, col := range jsonColumns {
		exists, err := s.tableExists(ctx, col.table)
		if err != nil {
			return report, err
		}
		present[col.table] = exists
	}

	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, col := range jsonColumns {
			if !present[col.table] {
				continue
			}
			ids, err := invalidJSONRows(ctx, tx, col.table, col.column)
			if err != nil {
				return err
			}
			for _, id := range ids {
				query := fmt.Sprintf("UPDATE %s SET %s = '{}' WHERE id = ?", col.table, col.column)
				if _, err := tx.ExecContext(ctx, query, id); err != nil {
					return fmt.Errorf("reset %s.%s for %s: %w", col.table, col.column, id, err)
				}
				report.RepairedJSONFields++
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	for _, stmt := range []string{"PRAGMA optimize", "VACUUM"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return report, fmt.Errorf("%s: %w", stmt, err)
		}
	}

	doctor, err := s.Doctor(ctx)
	if err != nil {
		return report, err
	}
	report.Repaired = true
	report.DoctorReport = doctor
	return report, nil
}

func (s *Store) inMemory() bool { return s.path == MemoryPath }

func (s *Store) appliedVersions(ctx context.Context) ([]int64, error) {
	statuses, err := s.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	versions := []int64{}
	for _, st := range statuses {
		if st.State == goose.StateApplied {
			versions = append(versions, st.Source.Version)
		}
	}
	return versions, nil
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("look up table %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) foreignKeyIssues(ctx context.Context) ([]ForeignKeyIssue, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return nil, fmt.Errorf("foreign key check: %w", err)
	}
	defer rows.Close()

	issues := []ForeignKeyIssue{}
	for rows.Next() {
		var issue ForeignKeyIssue
		var rowID sql.NullInt64
		if err := rows.Scan(&issue.Table, &rowID, &issue.Parent, &issue.FKID); err != nil {
			return nil, fmt.Errorf("scan foreign key check: %w", err)
		}
		if rowID.Valid {
			v := rowID.Int64
			issue.RowID = &v
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func (s *Store) invalidJSONRows(ctx context.Context, table, column string) ([]string, error) {
	var ids []string
	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		ids, err = invalidJSONRows(ctx, tx, table, column)
		return err
	})
	return ids, err
}

// invalidJSONRows returns the ids whose column holds text that is neither
// empty nor valid JSON.
func invalidJSONRows(ctx context.Context, tx *sql.Tx, table, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY rowid", column, table)
	var ids []string
	err := queryEach(ctx, tx, query, func(r rowScanner) error {
		var id string
		var raw sql.NullString
		if err := r.Scan(&id, &raw); err != nil {
			return err
		}
		if raw.Valid && raw.String != "" && !json.Valid([]byte(raw.String)) {
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}
