package pipeline

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Message is one broker message handed to a work queue.
type Message struct {
	Key   []byte
	Value []byte
}

// Handler processes one message. Errors are reported to the queue's logger;
// they never stop the workers.
type Handler func(key, value []byte) error

// WorkQueue decouples broker consumption from processing: consumers enqueue
// raw messages, a fixed pool of workers dispatches them to the handler. Each
// message is an independent unit of work with no ordering guarantee across
// workers.
type WorkQueue struct {
	name     string
	items    chan Message
	handler  Handler
	logger   *zap.Logger
	wg       sync.WaitGroup
	shutdown chan struct{}

	mu      sync.RWMutex
	running bool
}

// NewWorkQueue starts the worker pool.
func NewWorkQueue(name string, queueSize, workers int, handler Handler, logger *zap.Logger) *WorkQueue {
	queue := &WorkQueue{
		name:     name,
		items:    make(chan Message, queueSize),
		handler:  handler,
		logger:   logger,
		shutdown: make(chan struct{}),
		running:  true,
	}

	for i := 0; i < workers; i++ {
		queue.wg.Add(1)
		go queue.worker()
	}

	return queue
}

func (q *WorkQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case item := <-q.items:
			q.process(item)
		case <-q.shutdown:
			return
		}
	}
}

func (q *WorkQueue) process(item Message) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("worker panic",
				zap.String("queue", q.name), zap.Any("panic", r))
		}
	}()

	if err := q.handler(item.Key, item.Value); err != nil {
		q.logger.Warn("message processing failed",
			zap.String("queue", q.name),
			zap.String("key", string(item.Key)),
			zap.Error(err))
	}
}

// Enqueue offers a message to the queue, reporting false when the queue is
// full or shut down. Callers treat a full queue as backpressure.
func (q *WorkQueue) Enqueue(key, value []byte) bool {
	q.mu.RLock()
	running := q.running
	q.mu.RUnlock()
	if !running {
		return false
	}

	select {
	case q.items <- Message{Key: key, Value: value}:
		return true
	default:
		return false
	}
}

// Size returns the number of queued messages.
func (q *WorkQueue) Size() int {
	return len(q.items)
}

// Shutdown stops the workers, waiting up to timeout for in-flight messages.
func (q *WorkQueue) Shutdown(timeout time.Duration) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.mu.Unlock()

	close(q.shutdown)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("queue %s: shutdown timeout exceeded", q.name)
	}
}
