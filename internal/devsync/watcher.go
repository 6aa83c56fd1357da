package devsync

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rjeczalik/notify"

	"theme-sync/internal/events"
	"theme-sync/internal/util"
)

// Watcher turns filesystem events under the theme directory into EventBus
// publications. It never talks to the network itself; the task queue is the
// only network caller in watch mode, so rapid events cannot race each other.
type Watcher struct {
	watchPath string
	watchChan chan notify.EventInfo
}

func NewWatcher(watchPath string) *Watcher {
	return &Watcher{
		watchPath: watchPath,
		watchChan: make(chan notify.EventInfo, 100),
	}
}

// Run watches recursively until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	err := notify.Watch(
		filepath.Join(w.watchPath, "..."),
		w.watchChan,
		notify.Create|notify.Write|notify.Remove|notify.Rename,
	)
	if err != nil {
		return err
	}
	defer notify.Stop(w.watchChan)

	events.GlobalBus.Publish(events.EventWatcherStarted, w.watchPath)
	util.Default.Printf("Watching %s for theme changes\n", w.watchPath)

	for {
		select {
		case <-ctx.Done():
			events.GlobalBus.Publish(events.EventWatcherStopped, w.watchPath)
			return nil
		case ei := <-w.watchChan:
			w.handle(ei)
		}
	}
}

func (w *Watcher) handle(ei notify.EventInfo) {
	path := ei.Path()
	switch ei.Event() {
	case notify.Create, notify.Write:
		// directories create events too, uploads are file-only
		if fi, err := os.Stat(path); err != nil || fi.IsDir() {
			return
		}
		events.GlobalBus.Publish(events.EventAssetModified, path)
	case notify.Remove, notify.Rename:
		events.GlobalBus.Publish(events.EventAssetRemoved, path)
	}
}
