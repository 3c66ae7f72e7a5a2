// Package logging provides structured logging and log-file plumbing for lbsim.
//
// The [Logger] type wraps Go's log/slog to emit JSON debug records about the
// engine's decisions (scaling reasons, initialization, cancellation). The
// [RotatingWriter] type is a size-rotated file writer shared by the debug log
// and the human-readable simulation journal.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers created
// via With* methods share the underlying writer.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("debug.json", "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	simLogger := logger.WithComponent("sim")
//	simLogger.Debug("scaling decision", "cycle", 120, "action", "scale_up")
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"scaling decision","component":"sim","cycle":120,"action":"scale_up"}
//
// # Log Rotation
//
// Rotation is size based. When a write would push the file past MaxSizeMB,
// the file is renamed to path.1 (older backups shift to .2, .3, ...), backups
// beyond MaxBackups are deleted, and a fresh file is opened. With Compress set
// each new backup is gzipped to path.1.gz.
package logging
