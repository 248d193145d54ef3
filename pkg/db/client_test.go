package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Coco120903/BananaMeow-sub000/pkg/logger"
)

type ledgerRow struct {
	ID        int
	SessionID string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:dbclient_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&ledgerRow{}))
	return conn
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	conn := openTestDB(t)
	client := Wrap(conn)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&ledgerRow{SessionID: "cs_committed"}).Error
	}))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&ledgerRow{SessionID: "cs_rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&ledgerRow{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	conn := openTestDB(t)
	client := Wrap(conn)

	require.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&ledgerRow{SessionID: "cs_panic"}).Error)
			panic("explode")
		})
	})

	var count int64
	require.NoError(t, conn.Model(&ledgerRow{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPing(t *testing.T) {
	client := Wrap(openTestDB(t))
	require.NoError(t, client.Ping(context.Background()))
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := fmt.Errorf("insert order: %w", &pgconn.PgError{Code: "23505", ConstraintName: "orders_session_id_key"})
	require.True(t, IsUniqueViolation(pgErr, ""))
	require.True(t, IsUniqueViolation(pgErr, "orders_session_id_key"))
	require.False(t, IsUniqueViolation(pgErr, "donations_session_id_key"))

	pqErr := &pq.Error{Code: "23505", Constraint: "donations_session_id_key"}
	require.True(t, IsUniqueViolation(pqErr, "donations_session_id_key"))

	require.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: orders.session_id"), ""))
	require.False(t, IsUniqueViolation(errors.New("connection refused"), ""))
	require.False(t, IsUniqueViolation(nil, ""))
}

func TestQueryLoggerReportsFailuresAndSlowStatements(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "db-test", Output: buf, Format: "json"})
	ql := newQueryLogger(logg, 10*time.Millisecond)
	ctx := context.Background()
	stmt := func() (string, int64) { return `SELECT * FROM "orders"`, 0 }

	ql.Trace(ctx, time.Now(), stmt, nil)
	require.Zero(t, buf.Len(), "fast successful statements are not logged")

	ql.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	require.Zero(t, buf.Len(), "record not found is not a failure")

	ql.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	require.Contains(t, buf.String(), "db.slow_query")
	require.Contains(t, buf.String(), `"elapsed_ms"`)

	buf.Reset()
	ql.Trace(ctx, time.Now(), stmt, errors.New("relation does not exist"))
	require.Contains(t, buf.String(), "db.query_failed")
	require.Contains(t, buf.String(), "relation does not exist")

	buf.Reset()
	ql.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), stmt, errors.New("ignored"))
	require.Zero(t, buf.Len())
}

func TestQueryLoggerWithoutServiceLogger(t *testing.T) {
	require.Equal(t, gormlogger.Discard, newQueryLogger(nil, time.Second))
}
