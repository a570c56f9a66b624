//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

// Package mysql provides a MySQL-backed manager implementation for
// evaluation results, for runs whose results must outlive the local disk.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"trpc.group/trpc-go/slidebench/evalresult"
)

var _ evalresult.Manager = (*manager)(nil)

// manager implements evalresult.Manager on a MySQL database.
type manager struct {
	opts options
	db   *sql.DB
}

// New creates a MySQL-backed result manager.
func New(opt ...Option) (evalresult.Manager, error) {
	opts := newOptions(opt...)
	db := opts.db
	if db == nil {
		if opts.dsn == "" {
			return nil, errors.New("mysql dsn is empty")
		}
		var err error
		if db, err = sql.Open("mysql", opts.dsn); err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
	}
	m := &manager{opts: opts, db: db}
	if !opts.skipSchemaInit {
		ctx, cancel := context.WithTimeout(context.Background(), opts.initTimeout)
		defer cancel()
		if err := m.ensureSchema(ctx); err != nil {
			if opts.db == nil {
				_ = db.Close()
			}
			return nil, fmt.Errorf("init result schema: %w", err)
		}
	}
	return m, nil
}

// Close releases the database handle unless it was supplied by the caller.
func (m *manager) Close() error {
	if m.db == nil || m.opts.db != nil {
		return nil
	}
	return m.db.Close()
}

// SaveSample upserts one sample result.
func (m *manager) SaveSample(ctx context.Context, setID string, result *evalresult.SampleResult) error {
	if setID == "" {
		return errors.New("set id is empty")
	}
	if result == nil {
		return errors.New("result is nil")
	}
	if result.SampleID == "" {
		return errors.New("result.SampleID is empty")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal sample result: %w", err)
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (set_id, sample_id, payload)
		 VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   payload = VALUES(payload),
		   updated_at = CURRENT_TIMESTAMP(6)`,
		m.sampleTable(),
	)
	if _, err := m.db.ExecContext(ctx, query, setID, result.SampleID, payload); err != nil {
		return fmt.Errorf("store sample result %s.%s: %w", setID, result.SampleID, err)
	}
	return nil
}

// GetSample loads one sample result.
func (m *manager) GetSample(ctx context.Context, setID, sampleID string) (*evalresult.SampleResult, error) {
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	if sampleID == "" {
		return nil, errors.New("sample id is empty")
	}
	query := fmt.Sprintf(
		"SELECT payload FROM %s WHERE set_id = ? AND sample_id = ?",
		m.sampleTable(),
	)
	var payload []byte
	if err := m.db.QueryRowContext(ctx, query, setID, sampleID).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sample result %s.%s not found: %w", setID, sampleID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("load sample result %s.%s: %w", setID, sampleID, err)
	}
	var result evalresult.SampleResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal sample result %s.%s: %w", setID, sampleID, err)
	}
	return &result, nil
}

// HasSample reports whether a result row exists. Query errors read as false
// so a flaky connection degrades to re-evaluation instead of data loss.
func (m *manager) HasSample(ctx context.Context, setID, sampleID string) bool {
	if setID == "" || sampleID == "" {
		return false
	}
	query := fmt.Sprintf(
		"SELECT 1 FROM %s WHERE set_id = ? AND sample_id = ?",
		m.sampleTable(),
	)
	var one int
	err := m.db.QueryRowContext(ctx, query, setID, sampleID).Scan(&one)
	return err == nil
}

// SaveRun upserts an aggregate run result.
func (m *manager) SaveRun(ctx context.Context, run *evalresult.RunResult) (string, error) {
	if run == nil {
		return "", errors.New("run is nil")
	}
	if run.SetID == "" {
		return "", errors.New("run.SetID is empty")
	}
	if run.RunID == "" {
		run.RunID = fmt.Sprintf("%s_%s", run.SetID, uuid.New().String())
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("marshal run result: %w", err)
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (run_id, set_id, payload)
		 VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   set_id = VALUES(set_id),
		   payload = VALUES(payload),
		   updated_at = CURRENT_TIMESTAMP(6)`,
		m.runTable(),
	)
	if _, err := m.db.ExecContext(ctx, query, run.RunID, run.SetID, payload); err != nil {
		return "", fmt.Errorf("store run result %s: %w", run.RunID, err)
	}
	return run.RunID, nil
}

// GetRun loads an aggregate run result.
func (m *manager) GetRun(ctx context.Context, runID string) (*evalresult.RunResult, error) {
	if runID == "" {
		return nil, errors.New("run id is empty")
	}
	query := fmt.Sprintf("SELECT payload FROM %s WHERE run_id = ?", m.runTable())
	var payload []byte
	if err := m.db.QueryRowContext(ctx, query, runID).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run result %s not found: %w", runID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("load run result %s: %w", runID, err)
	}
	var run evalresult.RunResult
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("unmarshal run result %s: %w", runID, err)
	}
	return &run, nil
}

// ListRuns returns stored run IDs, newest first.
func (m *manager) ListRuns(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT run_id FROM %s ORDER BY created_at DESC", m.runTable())
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list run results: %w", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list run results: %w", err)
	}
	return ids, nil
}

func (m *manager) sampleTable() string {
	return m.opts.tablePrefix + "sample_results"
}

func (m *manager) runTable() string {
	return m.opts.tablePrefix + "run_results"
}

// ensureSchema creates the result tables when absent.
func (m *manager) ensureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
			   set_id     VARCHAR(191) NOT NULL,
			   sample_id  VARCHAR(191) NOT NULL,
			   payload    JSON NOT NULL,
			   created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			   updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			   PRIMARY KEY (set_id, sample_id)
			 )`,
			m.sampleTable(),
		),
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
			   run_id     VARCHAR(191) NOT NULL,
			   set_id     VARCHAR(191) NOT NULL,
			   payload    JSON NOT NULL,
			   created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			   updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			   PRIMARY KEY (run_id)
			 )`,
			m.runTable(),
		),
	}
	for _, stmt := range statements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
