// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// The package maintains a process-wide default logger that commands and
// library packages share. Output format, level, timestamp layout, and
// colorized pretty printing are applied with functional options:
//
//	log.Config(log.WithLevel(log.LevelDebug), log.WithFormat(log.FormatText))
//	log.Info("expansion complete", slog.Int("entities", n))
//
// Two output formats are supported, [FormatText] (default) and
// [FormatJSON], each with an optional colorized pretty variant intended
// for interactive terminals.
package log
