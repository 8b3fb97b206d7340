package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/dbtest"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"gorm.io/gorm"
)

func TestRetriesConflicts(t *testing.T) {
	db := dbtest.Open(t)

	var attempts, conflicts atomic.Int32
	err := NewTransactor(db).
		WithBackoff(time.Second, time.Millisecond, 5).
		WithOnConflict(func(error) { conflicts.Inc() }).
		Run(context.Background(), func(tx *gorm.DB) error {
			if attempts.Inc() < 3 {
				return ErrConflict
			}
			return nil
		})
	require.NoError(t, err)
	require.Equal(t, int32(3), attempts.Load())
	require.Equal(t, int32(2), conflicts.Load())
}

func TestDomainErrorNotRetried(t *testing.T) {
	db := dbtest.Open(t)

	var attempts atomic.Int32
	err := NewTransactor(db).Run(context.Background(), func(tx *gorm.DB) error {
		attempts.Inc()
		return errs.ErrBidTooLow
	})
	require.ErrorIs(t, err, errs.ErrBidTooLow)
	require.Equal(t, int32(1), attempts.Load())
}

func TestGivesUp(t *testing.T) {
	db := dbtest.Open(t)

	err := NewTransactor(db).
		WithBackoff(time.Second, time.Millisecond, 2).
		Run(context.Background(), func(tx *gorm.DB) error {
			return ErrConflict
		})
	require.Error(t, err)
	require.Equal(t, errs.KindInternal, errs.KindOf(err))
	require.False(t, errs.IsDomain(err))
}

func TestIsRetryable(t *testing.T) {
	require.True(t, IsRetryable(ErrConflict))
	require.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	require.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))
	require.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsRetryable(errors.New("boom")))
}

func TestParseIsolation(t *testing.T) {
	level, ok := ParseIsolation("serializable")
	require.True(t, ok)
	require.Equal(t, sql.LevelSerializable, level)

	level, ok = ParseIsolation("Read Committed")
	require.True(t, ok)
	require.Equal(t, sql.LevelReadCommitted, level)

	_, ok = ParseIsolation("")
	require.False(t, ok)
}
