package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"rubox/internal/util"
)

const (
	credentialsFile = "yandex_credentials.json"
	tokenFile       = "yandex_token.json"
)

var ErrNotAuthorized = errors.New("not authorized, run 'rubox auth' or set api_key")

type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Store keeps the OAuth app credentials and the current token in one directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) TokenPath() string {
	return filepath.Join(s.dir, tokenFile)
}

func (s *Store) LoadCredentials() (Credentials, error) {
	var creds Credentials

	b, err := os.ReadFile(filepath.Join(s.dir, credentialsFile))
	if err != nil {
		return creds, fmt.Errorf("%s not found in %s: %w", credentialsFile, s.dir, err)
	}

	if err := json.Unmarshal(b, &creds); err != nil {
		return creds, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds.ClientID == "" {
		return creds, fmt.Errorf("%s has no client_id", credentialsFile)
	}

	return creds, nil
}

func (s *Store) SaveToken(token *oauth2.Token) error {
	b, err := json.Marshal(token)
	if err != nil {
		return err
	}

	if err := util.WriteFileAtomic(s.TokenPath(), b, 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

func (s *Store) LoadToken() (*oauth2.Token, error) {
	b, err := os.ReadFile(s.TokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(b, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	return &token, nil
}
