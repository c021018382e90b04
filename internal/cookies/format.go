package cookies

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Format identifies a cookie store layout.
type Format int

const (
	FormatUnknown Format = iota
	FormatFirefox
	FormatChrome
	FormatNetscape
)

func (f Format) String() string {
	switch f {
	case FormatFirefox:
		return "Firefox"
	case FormatChrome:
		return "Chrome"
	case FormatNetscape:
		return "Netscape"
	}
	return "unknown"
}

var (
	ErrEmptyFile   = errors.New("cookie file is empty")
	ErrIsDirectory = errors.New("expected a cookie file, got a directory")
	ErrUnsupported = errors.New("unsupported cookie store")
)

// Cookie is one browser cookie. Value is sensitive and must not be logged.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expiry   time.Time
	Secure   bool
	HttpOnly bool
}

var sqliteMagic = []byte("SQLite format 3\x00")

// Detect sniffs the store format of the file at path.
func Detect(path string) (Format, error) {
	if err := checkFile(path); err != nil {
		return FormatUnknown, err
	}
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return FormatUnknown, fmt.Errorf("read %s: %w", path, err)
	}
	head = head[:n]

	if bytes.HasPrefix(head, sqliteMagic) {
		return sqliteFormat(path)
	}
	first, _, _ := strings.Cut(string(head), "\n")
	switch strings.TrimRight(first, "\r") {
	case "# Netscape HTTP Cookie File", "# HTTP Cookie File":
		return FormatNetscape, nil
	}
	return FormatUnknown, fmt.Errorf("%s: %w", path, ErrUnsupported)
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	return nil
}

func sqliteFormat(path string) (Format, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return FormatUnknown, fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	for _, s := range []schema{firefoxSchema, chromeSchema} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, s.table).Scan(&name)
		if err == nil {
			return s.format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%s: %w", path, ErrUnsupported)
}
