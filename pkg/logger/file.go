package logger

import (
	"log"
	"os"
	"sync"
)

// FileLogger appends timestamped lines to a file. Close closes the file.
type FileLogger struct {
	*StandardLogger
	f    *os.File
	once sync.Once
	err  error
}

// NewFileLogger opens path for appending, creating it with mode 0600.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		StandardLogger: NewStandardLogger(log.New(f, "", log.LstdFlags)),
		f:              f,
	}, nil
}

// Close closes the underlying file once; later calls return the same result.
func (l *FileLogger) Close() error {
	l.once.Do(func() { l.err = l.f.Close() })
	return l.err
}

var _ Logger = (*FileLogger)(nil)
