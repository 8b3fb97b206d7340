package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/config"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/errs"
	l "github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/task"
	"github.com/jackc/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Compare-and-set matched no row, someone else changed the record first
var ErrConflict = errors.New("concurrent modification")

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// Runs units of work in a transaction, retrying those that lost a race
type Transactor struct {
	db  *gorm.DB
	log *logrus.Entry

	txOptions      *sql.TxOptions
	maxElapsedTime time.Duration
	maxInterval    time.Duration
	maxRetries     uint64
	onConflict     func(error)
}

func NewTransactor(db *gorm.DB) (self *Transactor) {
	self = new(Transactor)
	self.db = db
	self.log = l.NewSublogger("transactor")
	self.maxElapsedTime = 5 * time.Second
	self.maxInterval = 200 * time.Millisecond
	self.maxRetries = 8
	return
}

func (self *Transactor) WithConfig(config *config.Database) *Transactor {
	self.maxElapsedTime = config.TxMaxElapsedTime
	self.maxInterval = config.TxMaxInterval
	self.maxRetries = config.TxMaxRetries
	isolation, ok := ParseIsolation(config.TxIsolation)
	if ok {
		self.txOptions = &sql.TxOptions{Isolation: isolation}
	}
	return self
}

func (self *Transactor) WithTxOptions(v *sql.TxOptions) *Transactor {
	self.txOptions = v
	return self
}

func (self *Transactor) WithBackoff(maxElapsedTime, maxInterval time.Duration, maxRetries uint64) *Transactor {
	self.maxElapsedTime = maxElapsedTime
	self.maxInterval = maxInterval
	self.maxRetries = maxRetries
	return self
}

// Called on every conflict that gets retried
func (self *Transactor) WithOnConflict(f func(error)) *Transactor {
	self.onConflict = f
	return self
}

func (self *Transactor) DB() *gorm.DB {
	return self.db
}

// Executes fn in a transaction. Retries only contention failures, anything else is returned as is
func (self *Transactor) Run(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	err = task.NewRetry().
		WithContext(ctx).
		WithInitialInterval(10 * time.Millisecond).
		WithMaxElapsedTime(self.maxElapsedTime).
		WithMaxInterval(self.maxInterval).
		WithMaxRetries(self.maxRetries).
		WithOnError(func(err error) {
			self.log.WithError(err).Debug("Transaction conflict, retrying")
			if self.onConflict != nil {
				self.onConflict(err)
			}
		}).
		Run(func() error {
			err := self.db.WithContext(ctx).Transaction(fn, self.txOptions)
			if err == nil || IsRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		})
	if err != nil && IsRetryable(err) {
		// Out of attempts
		self.log.WithError(err).Warn("Transaction conflict not resolved")
		return errs.New(errs.KindInternal, "too much contention, try again: %s", err.Error())
	}
	return
}

func IsRetryable(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

func ParseIsolation(v string) (sql.IsolationLevel, bool) {
	switch strings.ToLower(strings.ReplaceAll(v, " ", "_")) {
	case "read_committed":
		return sql.LevelReadCommitted, true
	case "repeatable_read":
		return sql.LevelRepeatableRead, true
	case "serializable":
		return sql.LevelSerializable, true
	}
	return sql.LevelDefault, false
}
