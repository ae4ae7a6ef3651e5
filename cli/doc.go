// Package cli contains the command line interface for meta-sanity.
//
// # Usage
//
// Generate is the default command: it expands a declarative YAML
// document into a meta file.
//
//	meta-sanity -y study.yaml -o study.meta
//	meta-sanity --ignore-class sample -y study.yaml -o study.meta
//	meta-sanity validate -y study.yaml
//
// # Logging Options
//
//   - --log-level: Set minimum log level (debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorized pretty printing for text format
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, cpu, goroutine,
//     heap, mem, mutex, trace)
//   - --pprof-dir: Set profile output directory
package cli
