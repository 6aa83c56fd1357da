package syncdata

import (
	"context"
	"os"
	"time"

	"theme-sync/internal/shopify"
	"theme-sync/internal/util"
)

// Sync uploads local files that are new or strictly newer than their remote
// counterpart, comparing file mtime against the listing's updated_at. It is
// one-way and never destructive: remote-only assets are left untouched and
// no DELETE is ever issued.
func (r *Runner) Sync(ctx context.Context) error {
	assets, err := r.client.List(ctx)
	if err != nil {
		r.notifier.Err(err.Error())
		return err
	}

	remote := make(map[string]time.Time, len(assets))
	for _, a := range assets {
		remote[a.Key] = a.UpdatedAt
	}

	files, err := r.themeFiles()
	if err != nil {
		return err
	}

	for _, f := range files {
		// uploads create assets under the percent-encoded key, so the
		// listing lookup has to use the same form
		key, err := r.keys.AssetKey(f)
		if err != nil {
			continue
		}
		fi, err := os.Stat(f)
		if err != nil {
			continue
		}
		if updatedAt, exists := remote[key]; exists && !fi.ModTime().After(updatedAt) {
			// remote is as new or newer, equal timestamps stay put
			continue
		}
		util.Default.Printf("  %s\n", key)
		if err := r.client.UploadFile(ctx, f); err != nil {
			if shopify.IsKind(err, shopify.KindInvalidPath) {
				continue
			}
			r.notifier.Err(err.Error())
			return err
		}
	}

	r.notifier.OK("sync complete")
	return nil
}
