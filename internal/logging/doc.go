// Package logging assembles the slog loggers used by the curator CLI and tool
// server.
//
// Output always goes to stderr by default: stdout carries command results and,
// for the tool server, the JSON-RPC stream. Both a console (key=value) and a
// JSON handler are available, selected by the logging.format option.
package logging
