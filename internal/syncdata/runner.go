package syncdata

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"theme-sync/internal/notify"
	"theme-sync/internal/shopify"
)

// settingsDataKey is the store-specific settings file the --no-json flag
// excludes from deploys.
const settingsDataKey = "config/settings_data.json"

type Options struct {
	DryRun bool
	NoJSON bool
}

// Runner drives the bulk deploy/download/sync engines. All of them are
// strictly sequential, bypass the watch queue and abort on the first failure.
type Runner struct {
	client   *shopify.Client
	keys     *shopify.KeyMapper
	notifier *notify.Notifier
	opts     Options
}

func NewRunner(client *shopify.Client, notifier *notify.Notifier, opts Options) *Runner {
	return &Runner{
		client:   client,
		keys:     client.Keys(),
		notifier: notifier,
		opts:     opts,
	}
}

// themeFiles enumerates local files under the recognized theme
// subdirectories, sorted for a deterministic sequence.
func (r *Runner) themeFiles() ([]string, error) {
	base := r.keys.BasePath()
	var files []string
	for _, dir := range shopify.ThemeDirs() {
		root := filepath.Join(base, dir)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// Upload pushes a single local file. Paths outside the theme whitelist are a
// silent no-op per the invalid-path contract.
func (r *Runner) Upload(ctx context.Context, localPath string) error {
	if err := r.client.UploadFile(ctx, localPath); err != nil {
		if shopify.IsKind(err, shopify.KindInvalidPath) {
			return nil
		}
		r.notifier.Err(err.Error())
		return err
	}
	r.notifier.OK("Successfully uploaded " + localPath + " to shopify")
	return nil
}

// Remove deletes the remote asset for a single local path, same silent-skip
// contract as Upload.
func (r *Runner) Remove(ctx context.Context, localPath string) error {
	if err := r.client.RemoveFile(ctx, localPath); err != nil {
		if shopify.IsKind(err, shopify.KindInvalidPath) {
			return nil
		}
		r.notifier.Err(err.Error())
		return err
	}
	r.notifier.OK("Successfully removed " + localPath + " from shopify")
	return nil
}
