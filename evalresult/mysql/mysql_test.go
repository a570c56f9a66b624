//
// Tencent is pleased to support the open source community by making slidebench available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// slidebench is licensed under the Apache License Version 2.0.
//
//

package mysql

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/slidebench/evalresult"
)

func newMockManager(t *testing.T) (evalresult.Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := New(WithDB(db), WithSkipSchemaInit(true))
	require.NoError(t, err)
	return m, mock
}

func TestNewRequiresDSNOrDB(t *testing.T) {
	_, err := New(WithSkipSchemaInit(true))
	assert.Error(t, err)
}

func TestNewRunsSchemaInit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS slidebench_sample_results").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS slidebench_run_results").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = New(WithDB(db))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSampleUpserts(t *testing.T) {
	m, mock := newMockManager(t)
	mock.ExpectExec("INSERT INTO slidebench_sample_results").
		WithArgs("brca-vqa", "s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := m.SaveSample(context.Background(), "brca-vqa",
		&evalresult.SampleResult{SampleID: "s1", Accuracy: 0.5})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSampleValidation(t *testing.T) {
	m, _ := newMockManager(t)
	ctx := context.Background()

	assert.Error(t, m.SaveSample(ctx, "", &evalresult.SampleResult{SampleID: "s"}))
	assert.Error(t, m.SaveSample(ctx, "set", nil))
	assert.Error(t, m.SaveSample(ctx, "set", &evalresult.SampleResult{}))
}

func TestGetSample(t *testing.T) {
	m, mock := newMockManager(t)
	payload := `{"sample_id":"s1","accuracy":0.75,"status":1,"creation_timestamp":"2025-01-02T03:04:05Z"}`
	mock.ExpectQuery("SELECT payload FROM slidebench_sample_results").
		WithArgs("set", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := m.GetSample(context.Background(), "set", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SampleID)
	assert.InDelta(t, 0.75, got.Accuracy, 1e-12)
}

func TestGetSampleNotFound(t *testing.T) {
	m, mock := newMockManager(t)
	mock.ExpectQuery("SELECT payload FROM slidebench_sample_results").
		WithArgs("set", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := m.GetSample(context.Background(), "set", "missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHasSample(t *testing.T) {
	m, mock := newMockManager(t)
	mock.ExpectQuery("SELECT 1 FROM slidebench_sample_results").
		WithArgs("set", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	assert.True(t, m.HasSample(context.Background(), "set", "s1"))
}

func TestHasSampleReadsErrorsAsFalse(t *testing.T) {
	m, mock := newMockManager(t)
	mock.ExpectQuery("SELECT 1 FROM slidebench_sample_results").
		WithArgs("set", "s1").
		WillReturnError(errors.New("connection lost"))

	assert.False(t, m.HasSample(context.Background(), "set", "s1"))
	assert.False(t, m.HasSample(context.Background(), "", "s1"))
}

func TestSaveRunGeneratesID(t *testing.T) {
	m, mock := newMockManager(t)
	mock.ExpectExec("INSERT INTO slidebench_run_results").
		WithArgs(sqlmock.AnyArg(), "set", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	runID, err := m.SaveRun(context.Background(), &evalresult.RunResult{SetID: "set"})
	require.NoError(t, err)
	assert.Contains(t, runID, "set_")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRuns(t *testing.T) {
	m, mock := newMockManager(t)
	mock.ExpectQuery("SELECT run_id FROM slidebench_run_results").
		WillReturnRows(sqlmock.NewRows([]string{"run_id"}).AddRow("r2").AddRow("r1"))

	ids, err := m.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, ids)
}

func TestTablePrefix(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m, err := New(WithDB(db), WithSkipSchemaInit(true), WithTablePrefix("custom_"))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT 1 FROM custom_sample_results").
		WithArgs("set", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	assert.True(t, m.HasSample(context.Background(), "set", "s1"))
}

func TestCloseKeepsCallerHandle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m, err := New(WithDB(db), WithSkipSchemaInit(true))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	// The handle must still be usable after Close.
	mock.ExpectQuery("SELECT 1 FROM slidebench_sample_results").
		WithArgs("set", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	assert.True(t, m.HasSample(context.Background(), "set", "s1"))
}
