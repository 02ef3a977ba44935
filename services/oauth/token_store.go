package oauth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/operatorhq/mailops/config"
	er "github.com/operatorhq/mailops/internal/errors"
	"github.com/operatorhq/mailops/internal/models"
)

const defaultTokenFile = ".mailops/credentials/hotmail_tokens.json"

// FileTokenStore persists the token set as a JSON file. Saves go through a
// temp file and rename so concurrent readers never observe a partial
// write. Two processes refreshing at once still race last-writer-wins;
// accepted for single-operator invocation.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(cfg *config.TokenStoreConfig) *FileTokenStore {
	path := cfg.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "/root"
		}
		path = filepath.Join(home, defaultTokenFile)
	}
	return &FileTokenStore{path: path}
}

// Path returns the durable token file location.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Save stamps the capture time and overwrites the token file.
func (s *FileTokenStore) Save(tokens *models.TokenSet) error {
	if tokens == nil {
		return errors.New("token set is nil")
	}

	tokens.SavedAt = time.Now().UTC().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create token directory")
	}

	payload, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize tokens")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return errors.Wrap(err, "failed to write token file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "failed to replace token file")
	}

	return nil
}

// Load returns the stored token set, or nil when the file is missing or
// not parseable. Only unexpected I/O failures are errors.
func (s *FileTokenStore) Load() (*models.TokenSet, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read token file")
	}

	var tokens models.TokenSet
	if err := json.Unmarshal(payload, &tokens); err != nil {
		return nil, nil
	}

	return &tokens, nil
}

// CurrentAccessToken returns the stored access token without checking
// expiry; the protocol server is the authority on token validity.
func (s *FileTokenStore) CurrentAccessToken() (string, error) {
	tokens, err := s.Load()
	if err != nil {
		return "", err
	}
	if tokens == nil || tokens.AccessToken == "" {
		return "", er.ErrNoTokens
	}
	return tokens.AccessToken, nil
}

// Status reports the operator-facing token state.
func (s *FileTokenStore) Status() *models.TokenStatus {
	tokens, err := s.Load()
	if err != nil || tokens == nil {
		return &models.TokenStatus{Configured: false}
	}

	return &models.TokenStatus{
		Configured:      true,
		HasRefreshToken: tokens.HasRefreshToken(),
		SavedAt:         tokens.SavedAt,
		TokenFile:       s.path,
	}
}
