// Package cli contains the command line interface for sx.
//
// # Usage
//
// The CLI evaluates s-expressions from arguments, files, or stdin:
//
//	sx "(if (eq 1 1) 'yes' 'no')"
//	sx eval --source program.sx
//	sx fmt json --source program.sx
//	sx repl
//
// # Commands
//
//   - eval: Evaluate expressions and print each result (default command)
//   - fmt:  Reformat source as canonical syntax, JSON, YAML, or a tree dump
//   - init: Write a default configuration file from current flag values
//   - repl: Start an interactive session with completion and history
//
// # Configuration Loader
//
// The package includes a Kong configuration loader ([resolve]) that reads
// config files written in sx syntax and converts them to Kong flag values.
// Each top-level invocation names a flag and carries its value:
//
//	(log-level 'debug')
//	(log-pretty true)
//
// Command-line flags override config file values. A sibling JSON config file
// is also honored via [kong.JSON].
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Enable colorized pretty printing
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/sx/pprof)
package cli
