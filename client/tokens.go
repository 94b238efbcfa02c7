package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TokenKey is the fixed storage key the access token lives under.
const TokenKey = "cms-github-token"

// TokenStore reads the persisted access token. ok is false when no token is
// stored, which is a valid anonymous state.
type TokenStore interface {
	Token() (token string, ok bool, err error)
}

// TokenFunc adapts a function to TokenStore.
type TokenFunc func() (string, bool, error)

func (f TokenFunc) Token() (string, bool, error) { return f() }

// FileTokenStore persists key/value pairs as a JSON object in a file, the
// way a browser keeps local storage per origin.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore returns a store backed by path. The file need not exist.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Token returns the value stored under TokenKey.
func (s *FileTokenStore) Token() (string, bool, error) {
	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	token, ok := values[TokenKey]
	return token, ok && token != "", nil
}

// SetToken stores token under TokenKey. An empty token removes it.
func (s *FileTokenStore) SetToken(token string) error {
	values, err := s.read()
	if err != nil {
		return err
	}
	if token == "" {
		delete(values, TokenKey)
	} else {
		values[TokenKey] = token
	}
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileTokenStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("token store %s: %w", s.path, err)
	}
	return values, nil
}
