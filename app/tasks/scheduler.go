package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	queueSize          = 300
	DefaultTaskTimeout = 5 * time.Minute
)

var (
	ErrQueueFull = errors.New("task queue is full")
	ErrStopped   = errors.New("scheduler stopped")
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type job struct {
	ctx  context.Context
	task TaskInterface
	done chan error
}

type Scheduler struct {
	workerCount int
	taskTimeout time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan job
}

func NewScheduler(workerCount int, taskTimeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if taskTimeout <= 0 {
		taskTimeout = DefaultTaskTimeout
	}

	return &Scheduler{
		workerCount: max(workerCount, 1),
		taskTimeout: taskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan job, queueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Run queues the task and waits for it to finish. It fails fast when the
// queue is full.
func (s *Scheduler) Run(ctx context.Context, task TaskInterface) error {
	j := job{ctx: ctx, task: task, done: make(chan error, 1)}

	select {
	case <-s.ctx.Done():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- j:
	default:
		return ErrQueueFull
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrStopped
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case j := <-s.taskQueue:
			j.done <- s.executeTask(id, j)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, j job) error {
	task := j.task
	task.Start()

	taskCtx, cancel := context.WithTimeout(j.ctx, s.taskTimeout)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	err := task.Execute(taskCtx)
	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "post", task.GetPostID(), "error", err)
	}

	return err
}
