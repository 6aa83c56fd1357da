package devsync

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"theme-sync/internal/config"
	"theme-sync/internal/events"
	"theme-sync/internal/notify"
	"theme-sync/internal/queue"
	"theme-sync/internal/shopify"
)

// Run wires watcher -> EventBus -> task queue and blocks until interrupted.
// Every watch event becomes its own queued task, executed strictly in order;
// edits are never coalesced, so the last event decides the remote state.
func Run(ctx context.Context, cfg *config.Config) error {
	base, err := cfg.AbsBasePath()
	if err != nil {
		return err
	}
	keys, err := shopify.NewKeyMapper(base)
	if err != nil {
		return err
	}
	client := shopify.NewClient(cfg, keys)
	notifier := notify.New(cfg.Notifications)
	q := queue.New(client, notifier, cfg.RateLimitDelay())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	q.Start(ctx)

	onModified := func(path string) {
		if !keys.ValidPath(path) {
			return
		}
		notifier.OK("Sending " + path + " to shopify")
		q.Push(queue.Task{Action: queue.ActionUpload, Path: path})
	}
	onRemoved := func(path string) {
		if !keys.ValidPath(path) {
			return
		}
		notifier.OK("Deleting " + path + " from shopify")
		q.Push(queue.Task{Action: queue.ActionRemove, Path: path})
	}

	if err := events.GlobalBus.Subscribe(events.EventAssetModified, onModified); err != nil {
		return err
	}
	if err := events.GlobalBus.Subscribe(events.EventAssetRemoved, onRemoved); err != nil {
		return err
	}
	defer func() {
		_ = events.GlobalBus.Unsubscribe(events.EventAssetModified, onModified)
		_ = events.GlobalBus.Unsubscribe(events.EventAssetRemoved, onRemoved)
	}()

	w := NewWatcher(base)
	runErr := w.Run(ctx)

	// drain whatever the watcher already enqueued before exiting
	q.Close()

	if runErr != nil {
		events.GlobalBus.Publish(events.EventShutdownRequested, "watcher: "+runErr.Error())
	}
	return runErr
}
