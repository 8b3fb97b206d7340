package events

import (
	"context"
	"database/sql"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/config"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/task"

	"github.com/redis/go-redis/v9"
	"go.uber.org/ratelimit"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Forwards outbox events to a Redis channel
type Relay struct {
	*task.Task

	db      *gorm.DB
	client  *redis.Client
	monitor monitoring.Monitor
	limiter ratelimit.Limiter

	channelName string
}

func NewRelay(config *config.Config) (self *Relay) {
	self = new(Relay)
	self.monitor = monitoring.NewNoop()

	self.channelName = config.Publisher.ChannelName
	if config.Publisher.MaxPerSecond > 0 {
		self.limiter = ratelimit.New(config.Publisher.MaxPerSecond)
	} else {
		self.limiter = ratelimit.NewUnlimited()
	}

	self.Task = task.NewTask(config, "relay").
		WithOnBeforeStart(self.connect).
		WithPeriodicSubtaskFunc(config.Publisher.Interval, self.run).
		WithOnAfterStop(self.disconnect)

	return
}

func (self *Relay) WithDB(db *gorm.DB) *Relay {
	self.db = db
	return self
}

// Client used instead of connecting upon start
func (self *Relay) WithClient(client *redis.Client) *Relay {
	self.client = client
	return self
}

func (self *Relay) WithMonitor(monitor monitoring.Monitor) *Relay {
	self.monitor = monitor
	return self
}

func (self *Relay) WithChannelName(v string) *Relay {
	self.channelName = v
	return self
}

func (self *Relay) connect() (err error) {
	if self.client != nil {
		return
	}
	self.client, err = NewRedisClient(self.Ctx, &self.Config.Redis, self.Name)
	if err != nil {
		self.Log.WithError(err).Error("Failed to connect to Redis")
	}
	return
}

func (self *Relay) disconnect() {
	err := self.client.Close()
	if err != nil {
		self.Log.WithError(err).Error("Failed to close connection")
	}
}

func (self *Relay) run() error {
	n, err := self.RelayOnce(self.Ctx)
	if err != nil {
		if self.IsStopping.Load() {
			return nil
		}
		self.Log.WithError(err).Error("Failed to relay events")
		// Next run will pick the same events up
		return nil
	}
	if n > 0 {
		self.Log.WithField("num", n).Debug("Relayed events")
	}
	return nil
}

// Publishes one batch of pending events in order. Stops at the first event that can't be published
func (self *Relay) RelayOnce(ctx context.Context) (published int, err error) {
	err = self.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		var pending []*model.Event
		err = tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("published_at IS NULL").
			Order("id ASC").
			Limit(self.Config.Publisher.BatchSize).
			Find(&pending).
			Error
		if err != nil {
			self.monitor.GetReport().Publisher.Errors.DbError.Inc()
			return
		}

		for _, event := range pending {
			err = self.publish(ctx, event)
			if err != nil {
				self.monitor.GetReport().Publisher.Errors.PersistentFailure.Inc()
				break
			}

			err = tx.Model(event).
				Update("published_at", sql.NullTime{Time: time.Now().UTC(), Valid: true}).
				Error
			if err != nil {
				self.monitor.GetReport().Publisher.Errors.DbError.Inc()
				return
			}
			published++
		}

		// Events marked so far are committed even if a later one failed
		return nil
	})
	if err != nil {
		return 0, err
	}

	self.updatePending(ctx)
	return
}

func (self *Relay) publish(ctx context.Context, event *model.Event) error {
	self.limiter.Take()

	return task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(self.Config.Publisher.MaxElapsedTime).
		WithMaxInterval(self.Config.Publisher.MaxInterval).
		WithOnError(func(err error) {
			self.Log.WithError(err).WithField("event_id", event.ID).Warn("Failed to publish event, retrying")
			self.monitor.GetReport().Publisher.Errors.Publish.Inc()
		}).
		Run(func() (err error) {
			err = self.client.Publish(ctx, self.channelName, event).Err()
			if err != nil {
				return
			}
			self.monitor.GetReport().Publisher.State.MessagesPublished.Inc()
			self.monitor.GetReport().Publisher.State.LastSuccessfulMessageTimestamp.Store(time.Now().Unix())
			return
		})
}

func (self *Relay) updatePending(ctx context.Context) {
	var count int64
	err := self.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("published_at IS NULL").
		Count(&count).
		Error
	if err != nil {
		self.Log.WithError(err).Warn("Failed to count pending events")
		return
	}
	self.monitor.GetReport().Publisher.State.PendingEvents.Store(count)
}
