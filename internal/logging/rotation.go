package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// RotationConfig holds configuration for log rotation.
type RotationConfig struct {
	// MaxSizeMB is the maximum size of a log file in megabytes before rotation.
	// A value of 0 disables rotation.
	MaxSizeMB int
	// MaxBackups is the number of old log files to keep.
	MaxBackups int
	// Compress gzips each backup as it is created.
	Compress bool
	// Truncate empties an existing file on open instead of appending to it.
	Truncate bool
}

// DefaultRotationConfig returns a RotationConfig with sensible defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

// RotatingWriter is an io.WriteCloser over a file that rotates once the file
// would exceed the configured size. It is safe for concurrent use.
type RotatingWriter struct {
	mu sync.Mutex

	fs         afero.Fs
	filePath   string
	maxSizeB   int64
	maxBackups int
	compress   bool

	file        afero.File
	currentSize int64
}

// NewRotatingWriter opens filePath on the OS filesystem.
func NewRotatingWriter(filePath string, config RotationConfig) (*RotatingWriter, error) {
	return NewRotatingWriterFs(afero.NewOsFs(), filePath, config)
}

// NewRotatingWriterFs opens filePath on fs, creating parent directories as
// needed.
func NewRotatingWriterFs(fs afero.Fs, filePath string, config RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		fs:         fs,
		filePath:   filePath,
		maxSizeB:   int64(config.MaxSizeMB) * 1024 * 1024,
		maxBackups: config.MaxBackups,
		compress:   config.Compress,
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if config.Truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	if err := rw.openFile(flags); err != nil {
		return nil, err
	}
	return rw, nil
}

// openFile opens the log file and records its size. The caller must hold
// the mutex or own rw exclusively.
func (rw *RotatingWriter) openFile(flags int) error {
	if err := rw.fs.MkdirAll(filepath.Dir(rw.filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := rw.fs.OpenFile(rw.filePath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	rw.file = file
	rw.currentSize = info.Size()
	return nil
}

// Write implements io.Writer, rotating first when p would overflow the
// current file. A single write larger than the limit still lands whole in a
// fresh file.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}

	if rw.maxSizeB > 0 && rw.currentSize > 0 && rw.currentSize+int64(len(p)) > rw.maxSizeB {
		if err := rw.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
			if rw.file == nil {
				return 0, err
			}
		}
	}

	n, err := rw.file.Write(p)
	rw.currentSize += int64(n)
	return n, err
}

// rotate closes the current file, shifts backups and reopens. The caller
// must hold the mutex.
func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.file = nil

	rw.shiftBackups()

	if rw.maxBackups > 0 {
		backup := rw.backupPath(1)
		if err := rw.fs.Rename(rw.filePath, backup); err != nil {
			if openErr := rw.openFile(os.O_CREATE | os.O_WRONLY | os.O_APPEND); openErr != nil {
				return fmt.Errorf("failed to rename log file and reopen: %w", openErr)
			}
			return fmt.Errorf("failed to rename log file: %w", err)
		}
		if rw.compress {
			if err := rw.compressFile(backup); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}
	}

	return rw.openFile(os.O_CREATE | os.O_WRONLY | os.O_TRUNC)
}

// shiftBackups moves .N to .N+1, dropping the oldest. Missing files are
// skipped.
func (rw *RotatingWriter) shiftBackups() {
	if rw.maxBackups <= 0 {
		return
	}

	oldest := rw.backupPath(rw.maxBackups)
	_ = rw.fs.Remove(oldest)
	_ = rw.fs.Remove(oldest + ".gz")

	for i := rw.maxBackups - 1; i >= 1; i-- {
		from, to := rw.backupPath(i), rw.backupPath(i+1)
		if ok, _ := afero.Exists(rw.fs, from+".gz"); ok {
			_ = rw.fs.Rename(from+".gz", to+".gz")
		} else if ok, _ := afero.Exists(rw.fs, from); ok {
			_ = rw.fs.Rename(from, to)
		}
	}
}

func (rw *RotatingWriter) backupPath(n int) string {
	return fmt.Sprintf("%s.%d", rw.filePath, n)
}

// compressFile gzips path to path.gz and removes the original on success.
func (rw *RotatingWriter) compressFile(path string) error {
	src, err := rw.fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup for compression %s: %w", path, err)
	}
	defer src.Close()

	gzPath := path + ".gz"
	dst, err := rw.fs.Create(gzPath)
	if err != nil {
		return fmt.Errorf("failed to create compressed backup %s: %w", gzPath, err)
	}

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		_ = dst.Close()
		_ = rw.fs.Remove(gzPath)
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		_ = dst.Close()
		_ = rw.fs.Remove(gzPath)
		return fmt.Errorf("failed to finalize %s: %w", gzPath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", gzPath, err)
	}

	return rw.fs.Remove(path)
}

// Sync flushes the underlying file.
func (rw *RotatingWriter) Sync() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	return rw.file.Sync()
}

// Close syncs and closes the underlying file. Close is idempotent.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}

	syncErr := rw.file.Sync()
	closeErr := rw.file.Close()
	rw.file = nil
	if closeErr != nil {
		return fmt.Errorf("failed to close log file: %w", closeErr)
	}
	if syncErr != nil {
		return fmt.Errorf("failed to sync log file: %w", syncErr)
	}
	return nil
}

// CurrentSize returns the size in bytes of the active file.
func (rw *RotatingWriter) CurrentSize() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.currentSize
}

// FilePath returns the path of the active file.
func (rw *RotatingWriter) FilePath() string {
	return rw.filePath
}
