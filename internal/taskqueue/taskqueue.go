// Package taskqueue is a Redis-backed FIFO task queue.
// Each named queue is a Redis list; producers LPUSH a JSON-encoded
// Task, workers BRPOP it off and dispatch to the handler registered for
// the task's name. BRPOP removes the task from the list, so a task whose
// worker dies before the handler finishes is not redelivered. There is no
// automatic retry: a handler that returns an error simply drops the task,
// and is expected to have recorded the failure itself through the job row.
package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Task is the wire format that crosses the broker boundary. Args is kept
// as a JSON blob so only primitive arguments cross, never entity handles.
type Task struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// Handler processes one task's arguments as raw JSON; handlers unmarshal
// Args themselves so Queue stays argument-type-agnostic.
type Handler func(ctx context.Context, args json.RawMessage) error

// Queue is a named broker-backed FIFO with its own worker concurrency.
type Queue struct {
	name        string
	client      *redis.Client
	concurrency int
	handlers    map[string]Handler
	mu          sync.RWMutex
	log         *logrus.Entry
}

func NewQueue(client *redis.Client, name string, concurrency int) *Queue {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Queue{
		name:        name,
		client:      client,
		concurrency: concurrency,
		handlers:    make(map[string]Handler),
		log:         logrus.WithField("queue", name),
	}
}

// key is the Redis list key backing this queue.
func (q *Queue) key() string {
	return fmt.Sprintf("taskqueue:%s", q.name)
}

// Client exposes the underlying Redis client so handlers can enqueue
// follow-up tasks (e.g. batch_analyze fanning out to analyze_game).
func (q *Queue) Client() *redis.Client { return q.client }

// Name returns the queue's name.
func (q *Queue) Name() string { return q.name }

// Register binds a task name to its handler. Must be called before Run.
func (q *Queue) Register(taskName string, h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[taskName] = h
}

// Enqueue serializes args and pushes a task onto the tail of the queue.
func Enqueue(ctx context.Context, client *redis.Client, queueName, taskName string, args interface{}) error {
	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("taskqueue: failed to marshal args for %s: %v", taskName, err)
	}
	task := Task{Name: taskName, Args: payload}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("taskqueue: failed to marshal task %s: %v", taskName, err)
	}
	key := fmt.Sprintf("taskqueue:%s", queueName)
	if err := client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("taskqueue: failed to enqueue %s on %s: %v", taskName, queueName, err)
	}
	return nil
}

// Run starts q.concurrency workers, each blocking on BRPOP in a loop,
// until ctx is cancelled. It blocks until every worker has exited.
func (q *Queue) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < q.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			q.workerLoop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (q *Queue) workerLoop(ctx context.Context, workerID int) {
	log := q.log.WithField("worker", workerID)
	log.Info("worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping")
			return
		default:
		}

		res, err := q.client.BRPop(ctx, 5*time.Second, q.key()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Warn("brpop failed, retrying after backoff")
			time.Sleep(time.Second)
			continue
		}

		// res is [key, value]
		if len(res) != 2 {
			continue
		}
		q.dispatch(ctx, res[1])
	}
}

func (q *Queue) dispatch(ctx context.Context, raw string) {
	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		q.log.WithError(err).Error("failed to decode task, dropping")
		return
	}

	q.mu.RLock()
	handler, ok := q.handlers[task.Name]
	q.mu.RUnlock()
	if !ok {
		q.log.WithField("task", task.Name).Error("no handler registered, dropping")
		return
	}

	log := q.log.WithField("task", task.Name)
	if err := handler(ctx, task.Args); err != nil {
		log.WithError(err).Error("handler returned error, task dropped (no automatic retry)")
	}
}
