package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LocalQueue runs operations one at a time in submission order. It guards a
// single shared local inference backend; cloud providers never go through it.
type LocalQueue struct {
	mu         sync.Mutex
	pending    []*queuedTask
	processing bool
}

type queuedTask struct {
	id      uuid.UUID
	ctx     context.Context
	execute func(ctx context.Context) error
	done    chan error
}

// NewLocalQueue creates an empty queue
func NewLocalQueue() *LocalQueue {
	return &LocalQueue{}
}

// Enqueue appends op and blocks until it has run. A failing op only fails
// its own caller; the queue moves on to the next task. If ctx ends while
// the task is still waiting, the task is skipped when its turn comes.
func (q *LocalQueue) Enqueue(ctx context.Context, op func(ctx context.Context) error) error {
	task := &queuedTask{
		id:      uuid.New(),
		ctx:     ctx,
		execute: op,
		done:    make(chan error, 1),
	}

	q.mu.Lock()
	q.pending = append(q.pending, task)
	start := !q.processing
	q.processing = true
	size := len(q.pending)
	q.mu.Unlock()

	log.Debug().Str("task", task.id.String()).Int("queue_size", size).Msg("local task enqueued")

	if start {
		go q.drain()
	}

	return <-task.done
}

// QueueSize returns the number of tasks waiting to run
func (q *LocalQueue) QueueSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// IsProcessing reports whether the drain loop is active
func (q *LocalQueue) IsProcessing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processing
}

func (q *LocalQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.processing = false
			q.mu.Unlock()
			return
		}
		task := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		task.done <- q.run(task)
	}
}

func (q *LocalQueue) run(task *queuedTask) (err error) {
	if err := task.ctx.Err(); err != nil {
		log.Debug().Str("task", task.id.String()).Msg("local task abandoned before start")
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("local task panicked: %v", r)
		}
	}()

	log.Debug().Str("task", task.id.String()).Msg("local task started")
	err = task.execute(task.ctx)
	log.Debug().Str("task", task.id.String()).Bool("failed", err != nil).Msg("local task finished")
	return err
}
