package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	TokenType       = "OAuth"
	DefaultPort     = 9999
	callbackPath    = "/callback"
	defaultDeadline = 2 * time.Minute
)

var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://oauth.yandex.ru/authorize",
	TokenURL: "https://oauth.yandex.ru/token",
}

var ErrStateMismatch = errors.New("oauth state mismatch")

func oauthConfig(creds Credentials, endpoint oauth2.Endpoint, port int) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  fmt.Sprintf("http://localhost:%d%s", port, callbackPath),
		Scopes:       []string{"cloud_api:disk.read", "cloud_api:disk.write"},
	}
}

type AuthorizeOptions struct {
	// Endpoint defaults to Endpoint.
	Endpoint oauth2.Endpoint
	Port     int
	Timeout  time.Duration
	// Out receives the instructions for the user. Nil means io.Discard.
	Out io.Writer
	// OpenURL, when set, is handed the consent URL (e.g. to launch a browser).
	OpenURL func(url string)
}

// Authorize runs the browser code flow: it serves the redirect on localhost,
// waits for the code, exchanges it and saves the token in the store.
func Authorize(ctx context.Context, store *Store, opts AuthorizeOptions) error {
	if opts.Endpoint.AuthURL == "" {
		opts.Endpoint = Endpoint
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultDeadline
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	creds, err := store.LoadCredentials()
	if err != nil {
		return err
	}
	cfg := oauthConfig(creds, opts.Endpoint, opts.Port)

	state, err := newState()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", opts.Port))
	if err != nil {
		return fmt.Errorf("failed to listen for the oauth callback: %w", err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			once.Do(func() { errCh <- ErrStateMismatch })
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, e, http.StatusBadRequest)
			once.Do(func() { errCh <- fmt.Errorf("authorization denied: %s %s", e, q.Get("error_description")) })
			return
		}

		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprintln(w, "<h2>Authentication complete! Now you can close this window and return to the terminal.</h2>")
		once.Do(func() { codeCh <- q.Get("code") })
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("force_confirm", "yes"))
	_, _ = fmt.Fprintln(opts.Out, "Visit the URL for the auth dialog:")
	_, _ = fmt.Fprintln(opts.Out)
	_, _ = fmt.Fprintln(opts.Out, authURL)
	_, _ = fmt.Fprintln(opts.Out)
	_, _ = fmt.Fprintln(opts.Out, "Authentication will complete after you log on via browser...")
	if opts.OpenURL != nil {
		go opts.OpenURL(authURL)
	}

	select {
	case code := <-codeCh:
		token, err := cfg.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to exchange token: %w", err)
		}
		if err := store.SaveToken(token); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(opts.Out, "Token saved to %s\n", store.TokenPath())
		return nil

	case err := <-errCh:
		return err

	case <-time.After(opts.Timeout):
		return fmt.Errorf("authorization timed out")

	case <-ctx.Done():
		return ctx.Err()
	}
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// TokenSource picks the token used for API calls: a configured api_key wins,
// otherwise the token saved by Authorize, refreshed when it expires.
func TokenSource(ctx context.Context, apiKey string, store *Store) (oauth2.TokenSource, error) {
	if apiKey != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: TokenType}), nil
	}

	token, err := store.LoadToken()
	if err != nil {
		return nil, err
	}

	creds, err := store.LoadCredentials()
	if err != nil {
		// Without app credentials the token cannot be refreshed, but it is
		// still good until it expires.
		return oauth2.StaticTokenSource(token), nil
	}

	base := oauthConfig(creds, Endpoint, DefaultPort).TokenSource(ctx, token)
	return &savingSource{base: base, store: store, last: token.AccessToken}, nil
}

// savingSource writes refreshed tokens back to the store.
type savingSource struct {
	mu    sync.Mutex
	base  oauth2.TokenSource
	store *Store
	last  string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token.AccessToken != s.last {
		s.last = token.AccessToken
		_ = s.store.SaveToken(token)
	}

	return token, nil
}
