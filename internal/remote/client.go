package remote

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL         = "https://cloud-api.yandex.net/v1/disk"
	DefaultTimeout         = 60 * time.Second
	DefaultMaxSubtreeSteps = 10000

	headerAuthorization = "Authorization"
	tokenTypeOAuth      = "OAuth"
)

var UserAgent = fmt.Sprintf("RuBox (%s; %s)", runtime.GOOS, runtime.GOARCH)

type Options struct {
	BaseURL string
	// RemoteRoot is the folder on the disk that mirrors the local root,
	// e.g. "Backup/photos". Leading and trailing slashes are ignored.
	RemoteRoot  string
	TokenSource oauth2.TokenSource
	Timeout     time.Duration
	// MaxSubtreeSteps bounds DeleteFolderSubtree. Zero means DefaultMaxSubtreeSteps.
	MaxSubtreeSteps int
	// Fs is where uploads are read from. Nil means the OS filesystem.
	Fs     afero.Fs
	Logger *zap.Logger
}

// Client talks to the disk REST API. All paths it accepts are relative to
// the remote root.
type Client struct {
	api      *req.Client
	transfer *req.Client
	fs       afero.Fs
	root     string
	maxSteps int
	log      *zap.Logger
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxSubtreeSteps <= 0 {
		opts.MaxSubtreeSteps = DefaultMaxSubtreeSteps
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	api := newHTTPClient(opts.Timeout).
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	if opts.TokenSource != nil {
		api.OnBeforeRequest(authorize(opts.TokenSource))
	}

	return &Client{
		api:      api,
		transfer: newHTTPClient(opts.Timeout),
		fs:       opts.Fs,
		root:     strings.Trim(opts.RemoteRoot, "/"),
		maxSteps: opts.MaxSubtreeSteps,
		log:      opts.Logger,
	}
}

// StaticToken wraps a raw API key so it is sent as "OAuth <key>".
func StaticToken(key string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: key, TokenType: tokenTypeOAuth})
}

func newHTTPClient(timeout time.Duration) *req.Client {
	return req.C().
		SetTimeout(timeout).
		SetUserAgent(UserAgent).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)
}

// The upload href points at a different host, so the token is only attached
// to calls made through the API client.
func authorize(ts oauth2.TokenSource) req.RequestMiddleware {
	return func(_ *req.Client, r *req.Request) error {
		tok, err := ts.Token()
		if err != nil {
			return fmt.Errorf("failed to get access token: %w", err)
		}

		tokenType := tok.TokenType
		if tokenType == "" || strings.EqualFold(tokenType, "bearer") {
			tokenType = tokenTypeOAuth
		}
		r.SetHeader(headerAuthorization, tokenType+" "+tok.AccessToken)

		return nil
	}
}

// RemotePath renders a root-relative key as the absolute disk path the API
// expects, e.g. "/Backup/photos/2024/a.jpg".
func (c *Client) RemotePath(key string) string {
	return "/" + path.Join(c.root, key)
}

func (c *Client) Root() string {
	return c.root
}

// check turns anything other than the single expected status into an error.
func check(resp *req.Response, requestErr error, operation, remotePath string, want int) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %s: %w", operation, remotePath, requestErr)
	}

	if resp.GetStatusCode() == want {
		return nil
	}

	apiErr := &APIError{
		StatusCode: resp.GetStatusCode(),
		Operation:  operation,
		Path:       remotePath,
	}
	if body := resp.Bytes(); len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}
	if apiErr.Code == "" {
		apiErr.Code = resp.Status
	}

	return apiErr
}

func (c *Client) logFailure(operation, remotePath string, err error) {
	c.log.Error("remote request failed",
		zap.String("op", operation),
		zap.String("path", remotePath),
		zap.Error(err))
}

func (c *Client) withContext(ctx context.Context) *req.Request {
	return c.api.R().SetContext(ctx)
}
