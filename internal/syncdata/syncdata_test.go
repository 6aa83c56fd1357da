package syncdata

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"theme-sync/internal/config"
	"theme-sync/internal/notify"
	"theme-sync/internal/shopify"
)

// fakeAPI is a minimal in-memory assets endpoint recording every request.
type fakeAPI struct {
	mu       sync.Mutex
	listing  []map[string]any // returned on GET with no asset[key]
	assets   map[string]map[string]any
	putKeys  []string
	delKeys  []string
	getKeys  []string
	failPut  int // 1-based index of the PUT that returns 500, 0 = never
	failGet  int // same for single-asset GETs
	putCount int
	getCount int
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			f.putCount++
			var req struct {
				Asset struct {
					Key string `json:"key"`
				} `json:"asset"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if f.failPut != 0 && f.putCount == f.failPut {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"errors":"upload failed"}`))
				return
			}
			f.putKeys = append(f.putKeys, req.Asset.Key)
			fmt.Fprintf(w, `{"asset":{"key":%q}}`, req.Asset.Key)
		case http.MethodDelete:
			f.delKeys = append(f.delKeys, r.URL.Query().Get("asset[key]"))
			w.Write([]byte(`{}`))
		case http.MethodGet:
			key := r.URL.Query().Get("asset[key]")
			if key == "" {
				resp := map[string]any{"assets": f.listing}
				if f.listing == nil {
					resp["assets"] = []any{}
				}
				_ = json.NewEncoder(w).Encode(resp)
				return
			}
			f.getCount++
			f.getKeys = append(f.getKeys, key)
			if f.failGet != 0 && f.getCount == f.failGet {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"errors":"retrieve failed"}`))
				return
			}
			asset, ok := f.assets[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"errors":"not found"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"asset": asset})
		}
	})
}

func newTestRunner(t *testing.T, api *fakeAPI, opts Options) (*Runner, string, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	base := t.TempDir()
	keys, err := shopify.NewKeyMapper(base)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{Store: srv.URL, APIKey: "k", Password: "p"}
	client := shopify.NewClient(cfg, keys)

	console := false
	notifier := notify.New(config.Notifications{Console: &console})
	return NewRunner(client, notifier, opts), base, srv
}

func writeLocal(t *testing.T, base, rel, content string) string {
	t.Helper()
	p := filepath.Join(base, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDeployUploadsOnlyWhitelistedFiles(t *testing.T) {
	api := &fakeAPI{}
	r, base, _ := newTestRunner(t, api, Options{})

	writeLocal(t, base, "assets/x.js", "x")
	writeLocal(t, base, "templates/y.liquid", "y")
	writeLocal(t, base, "random/z.txt", "z")

	if err := r.Deploy(context.Background()); err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}

	if len(api.putKeys) != 2 {
		t.Fatalf("expected 2 uploads, got %v", api.putKeys)
	}
	for _, k := range api.putKeys {
		if k == "random/z.txt" {
			t.Fatal("non-whitelisted file was uploaded")
		}
	}
}

func TestDeployNoJSONExcludesSettingsData(t *testing.T) {
	api := &fakeAPI{}
	r, base, _ := newTestRunner(t, api, Options{NoJSON: true})

	writeLocal(t, base, "config/settings_data.json", "{}")
	writeLocal(t, base, "config/settings_schema.json", "[]")

	if err := r.Deploy(context.Background()); err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}

	if len(api.putKeys) != 1 || api.putKeys[0] != "config/settings_schema.json" {
		t.Fatalf("expected only settings_schema.json, got %v", api.putKeys)
	}
}

func TestDeployAbortsOnFirstFailure(t *testing.T) {
	api := &fakeAPI{failPut: 2}
	r, base, _ := newTestRunner(t, api, Options{})

	writeLocal(t, base, "assets/a.js", "a")
	writeLocal(t, base, "assets/b.js", "b")
	writeLocal(t, base, "assets/c.js", "c")

	err := r.Deploy(context.Background())
	if err == nil {
		t.Fatal("expected deploy to fail")
	}
	if api.putCount != 2 {
		t.Fatalf("expected deploy to stop after the failing upload, saw %d PUTs", api.putCount)
	}
}

func TestSyncUploadsNewAndNewerOnly(t *testing.T) {
	remoteTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	api := &fakeAPI{
		listing: []map[string]any{
			{"key": "assets/newer-local.css", "updated_at": remoteTime.Format(time.RFC3339)},
			{"key": "assets/newer-remote.css", "updated_at": remoteTime.Format(time.RFC3339)},
			{"key": "assets/same-time.css", "updated_at": remoteTime.Format(time.RFC3339)},
			{"key": "assets/remote-only.css", "updated_at": remoteTime.Format(time.RFC3339)},
		},
	}
	r, base, _ := newTestRunner(t, api, Options{})

	newerLocal := writeLocal(t, base, "assets/newer-local.css", "a")
	newerRemote := writeLocal(t, base, "assets/newer-remote.css", "b")
	sameTime := writeLocal(t, base, "assets/same-time.css", "c")
	writeLocal(t, base, "assets/local-only.css", "d")

	if err := os.Chtimes(newerLocal, remoteTime.Add(time.Hour), remoteTime.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(newerRemote, remoteTime.Add(-time.Hour), remoteTime.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(sameTime, remoteTime, remoteTime); err != nil {
		t.Fatal(err)
	}

	if err := r.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	uploaded := map[string]bool{}
	for _, k := range api.putKeys {
		uploaded[k] = true
	}
	if !uploaded["assets/newer-local.css"] {
		t.Error("locally newer file was not uploaded")
	}
	if uploaded["assets/newer-remote.css"] {
		t.Error("remotely newer file was uploaded")
	}
	if uploaded["assets/same-time.css"] {
		t.Error("equal timestamps must not upload")
	}
	if !uploaded["assets/local-only.css"] {
		t.Error("local-only file was not uploaded")
	}
	if len(api.delKeys) != 0 {
		t.Errorf("sync must never delete, saw %v", api.delKeys)
	}
}

func TestSyncMatchesEncodedRemoteKeys(t *testing.T) {
	remoteTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// listings carry the same percent-encoded keys uploads create
	api := &fakeAPI{
		listing: []map[string]any{
			{"key": "assets/my%20theme.js", "updated_at": remoteTime.Format(time.RFC3339)},
			{"key": "assets/old%20style.css", "updated_at": remoteTime.Format(time.RFC3339)},
		},
	}
	r, base, _ := newTestRunner(t, api, Options{})

	remoteNewer := writeLocal(t, base, "assets/my theme.js", "a")
	localNewer := writeLocal(t, base, "assets/old style.css", "b")

	if err := os.Chtimes(remoteNewer, remoteTime.Add(-time.Hour), remoteTime.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(localNewer, remoteTime.Add(time.Hour), remoteTime.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	if err := r.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if len(api.putKeys) != 1 || api.putKeys[0] != "assets/old%20style.css" {
		t.Fatalf("expected only the locally newer encoded key uploaded, got %v", api.putKeys)
	}
}

func TestDownloadAssetWritesTextValue(t *testing.T) {
	api := &fakeAPI{assets: map[string]map[string]any{
		"assets/x.js": {"key": "assets/x.js", "value": "console.log(1)"},
	}}
	r, base, _ := newTestRunner(t, api, Options{})

	if err := r.DownloadAsset(context.Background(), filepath.Join(base, "assets", "x.js")); err != nil {
		t.Fatalf("DownloadAsset failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "assets", "x.js"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "console.log(1)" {
		t.Fatalf("unexpected file content %q", data)
	}
}

func TestDownloadAssetDecodesAttachment(t *testing.T) {
	content := []byte{0x89, 'P', 'N', 'G', 0xFF}
	api := &fakeAPI{assets: map[string]map[string]any{
		"assets/logo.png": {
			"key":        "assets/logo.png",
			"attachment": base64.StdEncoding.EncodeToString(content),
		},
	}}
	r, base, _ := newTestRunner(t, api, Options{})

	if err := r.DownloadAsset(context.Background(), filepath.Join(base, "assets", "logo.png")); err != nil {
		t.Fatalf("DownloadAsset failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "assets", "logo.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(content) {
		t.Fatal("binary content mismatch after base64 decode")
	}
}

func TestDownloadAssetIncompleteObjectWritesNothing(t *testing.T) {
	api := &fakeAPI{assets: map[string]map[string]any{
		"assets/x.js": {"key": "assets/x.js"},
	}}
	r, base, _ := newTestRunner(t, api, Options{})

	err := r.DownloadAsset(context.Background(), filepath.Join(base, "assets", "x.js"))
	if !shopify.IsKind(err, shopify.KindMalformedResponse) {
		t.Fatalf("expected KindMalformedResponse, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(base, "assets", "x.js")); !os.IsNotExist(statErr) {
		t.Fatal("incomplete object must not write a file")
	}
}

func TestDownloadThemeAbortsOnFirstFailure(t *testing.T) {
	api := &fakeAPI{
		listing: []map[string]any{
			{"key": "assets/1.js"}, {"key": "assets/2.js"}, {"key": "assets/3.js"},
			{"key": "assets/4.js"}, {"key": "assets/5.js"},
		},
		assets: map[string]map[string]any{
			"assets/1.js": {"key": "assets/1.js", "value": "1"},
			"assets/2.js": {"key": "assets/2.js", "value": "2"},
			"assets/3.js": {"key": "assets/3.js", "value": "3"},
			"assets/4.js": {"key": "assets/4.js", "value": "4"},
			"assets/5.js": {"key": "assets/5.js", "value": "5"},
		},
		failGet: 3,
	}
	r, base, _ := newTestRunner(t, api, Options{})

	err := r.DownloadTheme(context.Background())
	if err == nil {
		t.Fatal("expected download to fail")
	}
	if api.getCount != 3 {
		t.Fatalf("expected fetching to stop at item 3, saw %d single-asset GETs", api.getCount)
	}
	for _, rel := range []string{"assets/4.js", "assets/5.js"} {
		if _, statErr := os.Stat(filepath.Join(base, filepath.FromSlash(rel))); !os.IsNotExist(statErr) {
			t.Errorf("%s must not exist after aborted download", rel)
		}
	}
}

func TestDownloadDryRunFetchesButWritesNothing(t *testing.T) {
	api := &fakeAPI{assets: map[string]map[string]any{
		"assets/x.js": {"key": "assets/x.js", "value": "console.log(1)"},
	}}
	r, base, _ := newTestRunner(t, api, Options{DryRun: true})

	if err := r.DownloadAsset(context.Background(), filepath.Join(base, "assets", "x.js")); err != nil {
		t.Fatalf("DownloadAsset failed: %v", err)
	}
	if api.getCount != 1 {
		t.Fatalf("dry run must still fetch, saw %d GETs", api.getCount)
	}
	if _, statErr := os.Stat(filepath.Join(base, "assets", "x.js")); !os.IsNotExist(statErr) {
		t.Fatal("dry run must not write files")
	}
}
