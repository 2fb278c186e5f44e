package secstore

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// KDF parameters for the file store key.
const (
	saltLen = 16
	keyLen  = 32

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1
)

// ErrBadPassphrase is returned by Open when the file exists but cannot
// be decrypted with the given passphrase.
var ErrBadPassphrase = errors.New("secstore: wrong passphrase or corrupt store")

// File is a secret store encrypted at rest: an Argon2id-derived key
// seals the whole map with XChaCha20-Poly1305. Every mutation rewrites
// the file atomically (write temp, rename).
//
// On-disk layout: salt(16) || nonce(24) || AEAD(json map).
type File struct {
	mu   sync.Mutex
	path string
	key  []byte
	salt []byte
	m    map[string]string
}

// Open loads the store at path, creating an empty one (and its parent
// directory) if none exists.
func Open(path string, passphrase []byte) (*File, error) {
	f := &File{path: path, m: make(map[string]string)}

	blob, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		f.salt = make([]byte, saltLen)
		if _, err := rand.Read(f.salt); err != nil {
			return nil, err
		}
		f.key = deriveKey(passphrase, f.salt)
		return f, nil
	case err != nil:
		return nil, err
	}

	if len(blob) < saltLen+chacha20poly1305.NonceSizeX {
		return nil, ErrBadPassphrase
	}
	f.salt = blob[:saltLen]
	f.key = deriveKey(passphrase, f.salt)

	aead, err := chacha20poly1305.NewX(f.key)
	if err != nil {
		return nil, err
	}
	nonce := blob[saltLen : saltLen+chacha20poly1305.NonceSizeX]
	ct := blob[saltLen+chacha20poly1305.NonceSizeX:]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	if err := json.Unmarshal(plain, &f.m); err != nil {
		return nil, ErrBadPassphrase
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.m[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[key] = value
	return f.persist()
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.m[key]; !ok {
		return nil
	}
	delete(f.m, key)
	return f.persist()
}

func (f *File) persist() error {
	plain, err := json.Marshal(f.m)
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(f.key)
	if err != nil {
		return err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	blob := make([]byte, 0, saltLen+len(nonce)+len(plain)+aead.Overhead())
	blob = append(blob, f.salt...)
	blob = append(blob, nonce...)
	blob = append(blob, aead.Seal(nil, nonce, plain, nil)...)

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, keyLen)
}
