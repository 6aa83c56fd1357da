package syncdata

import (
	"context"

	"theme-sync/internal/shopify"
	"theme-sync/internal/util"
)

// Deploy uploads every local theme file sequentially, stopping at the first
// failure.
func (r *Runner) Deploy(ctx context.Context) error {
	files, err := r.themeFiles()
	if err != nil {
		return err
	}

	for _, f := range files {
		rel, err := r.keys.RelPath(f)
		if err != nil {
			// enumeration stays inside the whitelist, but a race with a
			// concurrent delete can still invalidate a path; skip it
			continue
		}
		if r.opts.NoJSON && rel == settingsDataKey {
			continue
		}
		util.Default.Printf("  %s\n", rel)
		if err := r.client.UploadFile(ctx, f); err != nil {
			if shopify.IsKind(err, shopify.KindInvalidPath) {
				continue
			}
			r.notifier.Err(err.Error())
			return err
		}
	}

	r.notifier.OK("deploy complete")
	return nil
}
