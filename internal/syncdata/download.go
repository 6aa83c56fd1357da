package syncdata

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"

	"theme-sync/internal/shopify"
	"theme-sync/internal/util"
)

// DownloadAsset fetches one asset addressed by its local path and writes it
// under the theme base directory.
func (r *Runner) DownloadAsset(ctx context.Context, localPath string) error {
	key, err := r.keys.AssetKey(localPath)
	if err != nil {
		r.notifier.Err(err.Error())
		return err
	}
	if err := r.fetchAndWrite(ctx, key); err != nil {
		r.notifier.Err(err.Error())
		return err
	}
	r.notifier.OK("Successfully downloaded " + key + " from shopify")
	return nil
}

// DownloadTheme fetches the remote listing and downloads each asset
// sequentially in listing order, stopping at the first failure.
func (r *Runner) DownloadTheme(ctx context.Context) error {
	assets, err := r.client.List(ctx)
	if err != nil {
		r.notifier.Err(err.Error())
		return err
	}

	for _, a := range assets {
		util.Default.Printf("  %s\n", a.Key)
		if err := r.fetchAndWrite(ctx, a.Key); err != nil {
			r.notifier.Err(err.Error())
			return err
		}
	}

	r.notifier.OK("download complete")
	return nil
}

func (r *Runner) fetchAndWrite(ctx context.Context, key string) error {
	asset, err := r.client.Retrieve(ctx, key)
	if err != nil {
		return err
	}
	return r.writeAsset(asset)
}

// writeAsset materializes one asset: value is written as UTF-8 text,
// attachment is base64-decoded to binary. An asset carrying neither is an
// incomplete object and writes nothing. Dry-run reports instead of writing.
func (r *Runner) writeAsset(asset *shopify.Asset) error {
	var data []byte
	switch {
	case asset.Value != nil:
		data = []byte(*asset.Value)
	case asset.Attachment != nil:
		decoded, err := base64.StdEncoding.DecodeString(*asset.Attachment)
		if err != nil {
			return &shopify.Error{
				Kind:   shopify.KindMalformedResponse,
				Op:     "download " + asset.Key,
				Detail: "attachment is not valid base64",
				Err:    err,
			}
		}
		data = decoded
	default:
		return &shopify.Error{
			Kind:   shopify.KindMalformedResponse,
			Op:     "download " + asset.Key,
			Detail: "incomplete object, neither value nor attachment present",
		}
	}

	dest, err := r.keys.LocalPath(asset.Key)
	if err != nil {
		return err
	}

	if r.opts.DryRun {
		util.Default.Printf("dry-run: would write %d bytes to %s\n", len(data), dest)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0644)
}
