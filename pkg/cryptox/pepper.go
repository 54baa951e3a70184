package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

var (
	pepperMu   sync.Mutex
	pepper     string
	pepperPath string
)

// SetPepperPath sets where the pepper is loaded from. Any cached pepper is dropped.
func SetPepperPath(path string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	pepperPath = path
	pepper = ""
}

// LoadPepper reads the pepper file, creating it with random content if it
// does not exist yet. Call it at startup so a broken path fails loudly.
func LoadPepper() error {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	p, err := loadOrCreatePepper(pepperPath)
	if err != nil {
		return err
	}
	pepper = p
	return nil
}

// Pepper returns the process pepper. When LoadPepper was never called, or
// failed, it falls back to an in-memory random pepper so hashing still works;
// such hashes will not verify after a restart.
func Pepper() string {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepper != "" {
		return pepper
	}
	if p, err := loadOrCreatePepper(pepperPath); err == nil {
		pepper = p
		return pepper
	}
	pepper = MustGenerateToken(keyLength)
	return pepper
}

func loadOrCreatePepper(path string) (string, error) {
	if path == "" {
		return "", errors.New("cryptox: pepper path not set")
	}
	path = filepath.Clean(path)

	raw, err := os.ReadFile(path)
	if err == nil {
		return string(raw), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}

	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(buf)
	if err := os.WriteFile(path, []byte(p), 0o600); err != nil {
		return "", err
	}
	return p, nil
}
