package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"theme-sync/internal/notify"
	"theme-sync/internal/shopify"
)

type Action string

const (
	ActionUpload Action = "upload"
	ActionRemove Action = "remove"
)

// Task is one queued watch event. The asset key is derived from Path at
// execution time, not at enqueue time.
type Task struct {
	Action Action
	Path   string
	Done   func(error)
}

// Transfer is the slice of the API client the queue drives.
type Transfer interface {
	UploadFile(ctx context.Context, localPath string) error
	RemoveFile(ctx context.Context, localPath string) error
}

// Queue serializes upload/remove tasks onto a single worker, observing a
// fixed delay after each task completes before the next one starts. That
// delay is the only backpressure against the API's rate limit.
type Queue struct {
	tasks    chan Task
	client   Transfer
	notifier *notify.Notifier
	delay    time.Duration

	startOnce sync.Once
	closeOnce sync.Once
	stopped   chan struct{}
}

func New(client Transfer, notifier *notify.Notifier, delay time.Duration) *Queue {
	return &Queue{
		tasks:    make(chan Task, 100),
		client:   client,
		notifier: notifier,
		delay:    delay,
		stopped:  make(chan struct{}),
	}
}

// Start launches the single worker goroutine. Calling it twice is a no-op.
// Cancelling ctx stops intake upstream, never the tasks themselves: whatever
// was accepted before Close still runs against a live context so the drain
// actually flushes instead of failing every pending call.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		go q.work(context.WithoutCancel(ctx))
	})
}

// Push enqueues a task. Tasks run strictly in enqueue order and are never
// coalesced or cancelled once accepted.
func (q *Queue) Push(t Task) {
	q.tasks <- t
}

// Close stops accepting tasks, lets the worker drain what is already queued
// and blocks until it exits.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.tasks)
	})
	<-q.stopped
}

func (q *Queue) work(ctx context.Context) {
	defer close(q.stopped)
	for t := range q.tasks {
		err := q.run(ctx, t)
		if shopify.IsKind(err, shopify.KindInvalidPath) {
			// outside the theme whitelist: silent no-op by contract
			err = nil
		} else {
			q.report(t, err)
		}
		if t.Done != nil {
			t.Done(err)
		}
		time.Sleep(q.delay)
	}
}

func (q *Queue) run(ctx context.Context, t Task) error {
	switch t.Action {
	case ActionUpload:
		return q.client.UploadFile(ctx, t.Path)
	case ActionRemove:
		return q.client.RemoveFile(ctx, t.Path)
	default:
		// dropped without any network side effect
		return &shopify.Error{
			Kind:   shopify.KindUnknownAction,
			Op:     string(t.Action) + " " + t.Path,
			Detail: "task dropped",
		}
	}
}

func (q *Queue) report(t Task, err error) {
	if err != nil {
		q.notifier.Err(err.Error())
		return
	}
	switch t.Action {
	case ActionUpload:
		q.notifier.OK(fmt.Sprintf("Successfully uploaded %s to shopify", t.Path))
	case ActionRemove:
		q.notifier.OK(fmt.Sprintf("Successfully removed %s from shopify", t.Path))
	}
}
