package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/config"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"

	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const defaultStopTimeout = 30 * time.Second

// Lifecycle of a long lived component: its goroutines, nested tasks and workers.
//
// Start runs everything registered with the builders. Stop cancels Ctx and
// closes StopChannel, CtxRunning gets cancelled once every goroutine and
// subtask returned.
type Task struct {
	Config *config.Config
	Log    *logrus.Entry
	Name   string

	IsStopping  *atomic.Bool
	StopChannel chan bool
	stopOnce    sync.Once
	running     sync.WaitGroup

	// Done when nothing runs in the task anymore. For the owner of the task
	CtxRunning    context.Context
	cancelRunning context.CancelFunc

	// Done when Stop is called. For the code running inside the task
	Ctx    context.Context
	cancel context.CancelFunc

	Workers      *workerpool.WorkerPool
	maxQueueSize int

	onBeforeStart []func() error
	onStop        []func()
	onAfterStop   []func()
	funcs         []func() error
	subtasks      []*Task
}

func NewTask(config *config.Config, name string) (self *Task) {
	self = new(Task)
	self.Config = config
	self.Name = name
	self.Log = logger.NewSublogger(name)

	self.Ctx, self.cancel = context.WithCancel(context.Background())
	self.CtxRunning, self.cancelRunning = context.WithCancel(context.Background())

	self.IsStopping = atomic.NewBool(false)
	self.StopChannel = make(chan bool)
	return
}

func (self *Task) WithOnBeforeStart(f func() error) *Task {
	self.onBeforeStart = append(self.onBeforeStart, f)
	return self
}

func (self *Task) WithOnStop(f func()) *Task {
	self.onStop = append(self.onStop, f)
	return self
}

// Runs after every goroutine of the task returned
func (self *Task) WithOnAfterStop(f func()) *Task {
	self.onAfterStop = append(self.onAfterStop, f)
	return self
}

// Nested task, started and stopped together with this one
func (self *Task) WithSubtask(t *Task) *Task {
	t.WithOnBeforeStart(func() error {
		self.running.Add(1)
		return nil
	}).WithOnAfterStop(self.running.Done)

	self.subtasks = append(self.subtasks, t)
	return self
}

// Function running in its own goroutine. It should return once StopChannel is closed
func (self *Task) WithSubtaskFunc(f func() error) *Task {
	self.funcs = append(self.funcs, f)
	return self
}

// Calls f right after start and then period after the previous call finished.
// An error from f ends the loop
func (self *Task) WithPeriodicSubtaskFunc(period time.Duration, f func() error) *Task {
	return self.WithSubtaskFunc(func() error {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-self.StopChannel:
				self.Log.Debug("Periodic subtask stopped")
				return nil
			case <-timer.C:
			}

			err := f()
			if err != nil {
				return err
			}
			timer.Reset(period)
		}
	})
}

// Pool of workers, drained after the task stops
func (self *Task) WithWorkerPool(maxWorkers int, maxQueueSize int) *Task {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	self.Workers = workerpool.New(maxWorkers)
	self.maxQueueSize = maxQueueSize
	return self.WithOnAfterStop(self.Workers.StopWait)
}

// Queues f for the workers. Waits while the queue is full, unless the task is stopping
func (self *Task) SubmitToWorker(f func()) {
	for self.maxQueueSize > 0 &&
		self.Workers.WaitingQueueSize() >= self.maxQueueSize &&
		!self.IsStopping.Load() {
		select {
		case <-self.Ctx.Done():
		case <-time.After(10 * time.Millisecond):
		}
	}
	self.Workers.Submit(f)
}

func (self *Task) spawn(f func() error) {
	self.running.Add(1)
	go func() {
		defer self.running.Done()
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			err, ok := p.(error)
			if !ok {
				err = fmt.Errorf("%v", p)
			}
			self.Log.WithError(err).Error("Panic in subtask")
			panic(p)
		}()

		err := f()
		if err != nil {
			self.Log.WithError(err).Error("Subtask failed")
		}
	}()
}

func (self *Task) Start() (err error) {
	for _, cb := range self.onBeforeStart {
		err = cb()
		if err != nil {
			return
		}
	}

	for _, subtask := range self.subtasks {
		err = subtask.Start()
		if err != nil {
			return
		}
	}

	for _, f := range self.funcs {
		self.spawn(f)
	}

	go func() {
		// Subtasks finish after Stop closes StopChannel
		self.running.Wait()

		for _, cb := range self.onAfterStop {
			cb()
		}

		self.cancelRunning()
	}()

	return nil
}

func (self *Task) Stop() {
	self.stopOnce.Do(func() {
		self.Log.Info("Stopping...")

		for _, subtask := range self.subtasks {
			subtask.Stop()
		}

		self.IsStopping.Store(true)
		close(self.StopChannel)
		self.cancel()

		for _, cb := range self.onStop {
			cb()
		}
	})
}

// Stops and waits at most Config.StopTimeout for everything to finish
func (self *Task) StopWait() {
	timeout := defaultStopTimeout
	if self.Config != nil && self.Config.StopTimeout > 0 {
		timeout = self.Config.StopTimeout
	}

	self.Stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		self.Log.Error("Timeout reached, failed to stop")
	case <-self.CtxRunning.Done():
		self.Log.Info("Task finished")
	}
}
