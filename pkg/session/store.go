package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

const (
	// StoreFileName holds the normalized cookie set.
	StoreFileName = "cookies.json"
	// RawFileName holds the last login's cookie capture for diagnostics.
	RawFileName = "cookies.raw.json"

	storeFileMode = 0600
)

// Store persists the session cookie set.
type Store interface {
	// Load returns the stored cookies. It fails with ErrStoreNotFound,
	// ErrStoreEmpty or ErrDeserialization when there is nothing usable.
	Load() ([]Cookie, error)
	// Save replaces the stored cookie set.
	Save(cookies []Cookie) error
	// SaveRaw writes the diagnostic capture of a login's cookies.
	SaveRaw(raw []RawCookie) error
	// Delete removes the store. A missing store is not an error.
	Delete() error
}

// Sealer protects cookie values at rest. credman.Sealer implements it.
type Sealer interface {
	Seal(name, value string) (string, error)
	Open(name, value string) (string, error)
}

// FileStore keeps cookies.json and cookies.raw.json in one directory.
type FileStore struct {
	fs     afero.Fs
	dir    string
	sealer Sealer
	now    func() time.Time
}

// StoreOption configures a FileStore.
type StoreOption func(*FileStore)

// WithSealer encrypts cookie values on Save and decrypts them on Load.
func WithSealer(s Sealer) StoreOption {
	return func(f *FileStore) { f.sealer = s }
}

// WithStoreClock overrides the clock used to drop expired cookies.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(f *FileStore) { f.now = now }
}

// NewFileStore creates a store in dir on fs. Use afero.NewOsFs() for the
// real filesystem.
func NewFileStore(fs afero.Fs, dir string, opts ...StoreOption) *FileStore {
	f := &FileStore{fs: fs, dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the location of cookies.json.
func (f *FileStore) Path() string {
	return filepath.Join(f.dir, StoreFileName)
}

// RawPath returns the location of cookies.raw.json.
func (f *FileStore) RawPath() string {
	return filepath.Join(f.dir, RawFileName)
}

// Load reads cookies.json. Any entry without a name makes the whole store
// unreadable; expired cookies are dropped, and a store left with no cookies
// reports ErrStoreEmpty.
func (f *FileStore) Load() ([]Cookie, error) {
	data, err := afero.ReadFile(f.fs, f.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}

	var stored []Cookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}

	now := f.now()
	cookies := make([]Cookie, 0, len(stored))
	for i, c := range stored {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrDeserialization, i)
		}
		if c.Expired(now) {
			continue
		}
		if f.sealer != nil {
			v, err := f.sealer.Open(c.Name, c.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: cookie %q: %w", ErrDeserialization, c.Name, err)
			}
			c.Value = v
		}
		cookies = append(cookies, c)
	}
	if len(cookies) == 0 {
		return nil, ErrStoreEmpty
	}
	return cookies, nil
}

// Save writes cookies.json atomically.
func (f *FileStore) Save(cookies []Cookie) error {
	out := make([]Cookie, len(cookies))
	copy(out, cookies)
	if f.sealer != nil {
		for i := range out {
			v, err := f.sealer.Seal(out[i].Name, out[i].Value)
			if err != nil {
				return fmt.Errorf("seal cookie %q: %w", out[i].Name, err)
			}
			out[i].Value = v
		}
	}
	return f.writeJSON(f.Path(), out)
}

// SaveRaw writes cookies.raw.json. Values are sealed when a sealer is
// configured, otherwise the capture is written as received.
func (f *FileStore) SaveRaw(raw []RawCookie) error {
	out := make([]RawCookie, len(raw))
	copy(out, raw)
	if f.sealer != nil {
		for i := range out {
			v, err := f.sealer.Seal(out[i].CookieName(), out[i].Value)
			if err != nil {
				return fmt.Errorf("seal raw cookie %q: %w", out[i].CookieName(), err)
			}
			out[i].Value = v
		}
	}
	return f.writeJSON(f.RawPath(), out)
}

// Delete removes both files.
func (f *FileStore) Delete() error {
	for _, p := range []string{f.Path(), f.RawPath()} {
		if err := f.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (f *FileStore) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := f.fs.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := afero.TempFile(f.fs, f.dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		f.fs.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		f.fs.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := f.fs.Chmod(tmpPath, storeFileMode); err != nil {
		f.fs.Remove(tmpPath)
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := f.fs.Rename(tmpPath, path); err != nil {
		f.fs.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
