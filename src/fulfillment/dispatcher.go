package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/config"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/monitoring"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

// Plaintext code handed over to the messaging service
type CodeMessage struct {
	ListingID string    `json:"listing_id"`
	BuyerID   string    `json:"buyer_id"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Sends issued delivery codes to an external webhook, which delivers them to the buyer
type Dispatcher struct {
	*task.Task

	client  *resty.Client
	url     string
	monitor monitoring.Monitor
	input   chan *CodeMessage
}

func NewDispatcher(config *config.Config) (self *Dispatcher) {
	self = new(Dispatcher)
	self.monitor = monitoring.NewNoop()

	self.input = make(chan *CodeMessage, 100)

	self.url = config.Dispatcher.Url
	self.client = resty.New().
		SetTimeout(config.Dispatcher.RequestTimeout).
		SetHeader("User-Agent", "selliko/dispatcher").
		SetRetryCount(0).
		OnAfterResponse(self.onStatusToError)

	if config.Dispatcher.Token != "" {
		self.client.SetAuthToken(config.Dispatcher.Token)
	}

	self.Task = task.NewTask(config, "dispatcher").
		WithSubtaskFunc(self.run).
		WithWorkerPool(config.Dispatcher.MaxWorkers, 1000)

	return
}

func (self *Dispatcher) WithMonitor(monitor monitoring.Monitor) *Dispatcher {
	self.monitor = monitor
	return self
}

// Queues the message. Gives up when the context is done first
func (self *Dispatcher) Dispatch(ctx context.Context, msg *CodeMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-self.Ctx.Done():
		return fmt.Errorf("dispatcher is stopping")
	case self.input <- msg:
		return nil
	}
}

// Converts HTTP status to errors
func (self *Dispatcher) onStatusToError(c *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return fmt.Errorf("unexpected status: %s", resp.Status())
}

func (self *Dispatcher) send(msg *CodeMessage) (err error) {
	resp, err := self.client.R().
		SetContext(self.Ctx).
		SetBody(msg).
		SetHeader("Content-Type", "application/json").
		Post(self.url)
	if err != nil {
		// Client errors won't get better with retrying
		if resp != nil && resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
			return backoff.Permanent(err)
		}
		return
	}
	return
}

func (self *Dispatcher) run() (err error) {
	for {
		select {
		case <-self.StopChannel:
			return nil
		case msg := <-self.input:
			self.SubmitToWorker(func() {
				err := task.NewRetry().
					WithContext(self.Ctx).
					WithMaxElapsedTime(self.Config.Dispatcher.MaxElapsedTime).
					WithMaxInterval(self.Config.Dispatcher.MaxInterval).
					WithOnError(func(err error) {
						self.Log.WithError(err).WithField("listing_id", msg.ListingID).Warn("Failed to dispatch delivery code, retrying")
					}).
					Run(func() error {
						return self.send(msg)
					})
				if err != nil {
					self.Log.WithError(err).WithField("listing_id", msg.ListingID).Error("Failed to dispatch delivery code, giving up")
					self.monitor.GetReport().Market.Errors.DispatchFailure.Inc()
					return
				}
				self.monitor.GetReport().Market.State.CodesDispatched.Inc()
			})
		}
	}
}
