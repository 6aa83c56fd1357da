package shopify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"theme-sync/internal/config"
)

// Asset is a single remote theme file. Exactly one of Value (text) or
// Attachment (base64 binary) is populated; a nil pointer means the field was
// absent from the response.
type Asset struct {
	Key        string    `json:"key"`
	Value      *string   `json:"value,omitempty"`
	Attachment *string   `json:"attachment,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
	Size       int64     `json:"size,omitempty"`
}

type Theme struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type assetPayload struct {
	Key        string `json:"key"`
	Value      string `json:"value,omitempty"`
	Attachment string `json:"attachment,omitempty"`
}

type putRequest struct {
	Asset assetPayload `json:"asset"`
}

// envelope covers every response shape the API sends back. RawMessage keeps
// "field present" distinguishable from "field empty".
type envelope struct {
	Asset  json.RawMessage `json:"asset"`
	Assets json.RawMessage `json:"assets"`
	Themes json.RawMessage `json:"themes"`
	Errors json.RawMessage `json:"errors"`
}

// Client talks to the theme-asset REST API. All operations are one-shot:
// nothing is retried here, the queue's rate-limit delay is the only pacing.
type Client struct {
	http    *resty.Client
	themeID string
	keys    *KeyMapper
}

func NewClient(cfg *config.Config, keys *KeyMapper) *Client {
	base := cfg.Store
	if !strings.Contains(base, "://") {
		if cfg.Port != 0 {
			base = fmt.Sprintf("https://%s:%d", base, cfg.Port)
		} else {
			base = "https://" + base
		}
	}

	h := resty.New().
		SetBaseURL(base).
		SetBasicAuth(cfg.APIKey, cfg.Password).
		SetHeader("Content-Type", "application/json")
	if t := cfg.Timeout(); t > 0 {
		h.SetTimeout(t)
	}

	return &Client{http: h, themeID: cfg.ThemeID, keys: keys}
}

// Keys exposes the client's key mapper so the engines share one base path.
func (c *Client) Keys() *KeyMapper {
	return c.keys
}

// assetsPath targets the theme-scoped collection when a theme id is
// configured, the legacy unscoped collection otherwise.
func (c *Client) assetsPath() string {
	if c.themeID != "" {
		return "/admin/themes/" + c.themeID + "/assets.json"
	}
	return "/admin/assets.json"
}

// isBinary classifies content the way the API distinguishes value from
// attachment: any byte outside 7-bit ASCII means binary.
func isBinary(data []byte) bool {
	for _, b := range data {
		if b > 127 {
			return true
		}
	}
	return false
}

// interpret applies the shared response contract: malformed JSON is its own
// error, any status >= 400 is a remote rejection carrying the API's detail.
func interpret(resp *resty.Response, op string) (*envelope, error) {
	var env envelope
	body := bytes.TrimSpace(resp.Body())
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, &Error{Kind: KindMalformedResponse, Op: op, Detail: "failed to parse response", Err: err}
		}
	}
	if resp.StatusCode() >= 400 {
		return nil, &Error{Kind: KindRemoteRejection, Op: op, Detail: errorDetail(env.Errors, resp.StatusCode())}
	}
	return &env, nil
}

func errorDetail(raw json.RawMessage, status int) string {
	if len(raw) == 0 {
		return fmt.Sprintf("HTTP %d", status)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Retrieve fetches a single asset by key. A success response without an
// "asset" field is an incomplete response, independent of HTTP status.
func (c *Client) Retrieve(ctx context.Context, key string) (*Asset, error) {
	op := "retrieve " + key
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("asset[key]", key).
		Get(c.assetsPath())
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	env, err := interpret(resp, op)
	if err != nil {
		return nil, err
	}
	if env.Asset == nil {
		return nil, &Error{Kind: KindMalformedResponse, Op: op, Detail: "incomplete response, asset field missing"}
	}
	var asset Asset
	if err := json.Unmarshal(env.Asset, &asset); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Op: op, Detail: "failed to parse response", Err: err}
	}
	return &asset, nil
}

// List fetches the full asset listing for the configured scope.
func (c *Client) List(ctx context.Context) ([]Asset, error) {
	op := "list assets"
	resp, err := c.http.R().SetContext(ctx).Get(c.assetsPath())
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	env, err := interpret(resp, op)
	if err != nil {
		return nil, err
	}
	if env.Assets == nil {
		return nil, &Error{Kind: KindMalformedResponse, Op: op, Detail: "incomplete response, assets field missing"}
	}
	var assets []Asset
	if err := json.Unmarshal(env.Assets, &assets); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Op: op, Detail: "failed to parse response", Err: err}
	}
	return assets, nil
}

// Themes fetches the store's theme list.
func (c *Client) Themes(ctx context.Context) ([]Theme, error) {
	op := "list themes"
	resp, err := c.http.R().SetContext(ctx).Get("/admin/themes.json")
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	env, err := interpret(resp, op)
	if err != nil {
		return nil, err
	}
	if env.Themes == nil {
		return nil, &Error{Kind: KindMalformedResponse, Op: op, Detail: "incomplete response, themes field missing"}
	}
	var themes []Theme
	if err := json.Unmarshal(env.Themes, &themes); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Op: op, Detail: "failed to parse response", Err: err}
	}
	return themes, nil
}

// Update upserts one asset. Text content is sent as value, binary content as
// a base64 attachment.
func (c *Client) Update(ctx context.Context, key string, content []byte) error {
	op := "upload " + key
	payload := assetPayload{Key: key}
	if isBinary(content) {
		payload.Attachment = base64.StdEncoding.EncodeToString(content)
	} else {
		payload.Value = string(content)
	}

	resp, err := c.http.R().SetContext(ctx).
		SetBody(putRequest{Asset: payload}).
		Put(c.assetsPath())
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	_, err = interpret(resp, op)
	return err
}

// Destroy removes one asset, key passed as a query parameter.
func (c *Client) Destroy(ctx context.Context, key string) error {
	op := "delete " + key
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("asset[key]", key).
		Delete(c.assetsPath())
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	_, err = interpret(resp, op)
	return err
}

// UploadFile reads a local file and upserts it under its derived asset key.
// Paths outside the theme whitelist return a KindInvalidPath error without
// touching the network; callers treat that as a silent skip.
func (c *Client) UploadFile(ctx context.Context, localPath string) error {
	key, err := c.keys.AssetKey(localPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", localPath, err)
	}
	return c.Update(ctx, key, data)
}

// RemoveFile deletes the asset derived from a local path. Invalid paths are
// a network no-op, same contract as UploadFile.
func (c *Client) RemoveFile(ctx context.Context, localPath string) error {
	key, err := c.keys.AssetKey(localPath)
	if err != nil {
		return err
	}
	return c.Destroy(ctx, key)
}
