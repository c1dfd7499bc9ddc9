// Package main hosts the dataset-curator CLI entrypoint and command graph.
//
// The Cobra command tree maps terminal invocations onto the internal
// packages: curate runs a full curation pass from a TOML config, validate and
// filter audit an existing dataset, serve exposes the same operations as MCP
// tools over stdio, and config init scaffolds a sample configuration.
//
// Results go to stdout. Logs and progress bars go to stderr so output can be
// piped, and so the MCP server's stdout carries nothing but protocol
// messages.
package main
