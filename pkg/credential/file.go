package credential

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/nacl/secretbox"
)

type fileRecord struct {
	Token     string    `json:"token,omitempty"`
	Sealed    string    `json:"sealed,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore keeps the token in a JSON file readable only by its owner.
// With a passphrase the token is sealed with NaCl secretbox.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  *[32]byte
}

// DefaultFilePath returns the per-user location of the credential file.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "wellness", "credentials.json")
}

// NewFileStore builds a file store at path. An empty path selects
// DefaultFilePath.
func NewFileStore(path, passphrase string) *FileStore {
	if path == "" {
		path = DefaultFilePath()
	}
	s := &FileStore{path: path}
	if passphrase != "" {
		sum := blake2b.Sum256([]byte(passphrase))
		s.key = &sum
	}
	return s
}

// Path reports where the credential is stored.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoCredential
		}
		return "", fmt.Errorf("read credential file: %w", err)
	}
	var rec fileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("decode credential file: %w", err)
	}
	if rec.Sealed != "" {
		return s.open(rec.Sealed)
	}
	if rec.Token == "" {
		return "", ErrNoCredential
	}
	return rec.Token, nil
}

func (s *FileStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := fileRecord{UpdatedAt: time.Now().UTC()}
	if s.key != nil {
		sealed, err := s.seal(token)
		if err != nil {
			return err
		}
		rec.Sealed = sealed
	} else {
		rec.Token = token
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("prepare credential directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete credential file: %w", err)
	}
	return nil
}

func (s *FileStore) seal(token string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("credential nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (s *FileStore) open(sealed string) (string, error) {
	if s.key == nil {
		return "", errors.New("credential file is encrypted but no passphrase is configured")
	}
	box, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(box) < 24 {
		return "", errors.New("credential file is corrupt")
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, s.key)
	if !ok {
		return "", errors.New("credential file cannot be decrypted with the configured passphrase")
	}
	return string(plain), nil
}
