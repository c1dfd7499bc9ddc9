// Package config loads, normalizes, and validates the curation settings.
//
// Settings live in a TOML file. Load searches ./curator.toml and then
// ~/.config/dataset-curator/config.toml unless an explicit path is given.
// Missing keys take the values from Default, "~" in paths is expanded, and
// Validate rejects anything a curation run could not proceed with. Config is
// passed explicitly to the packages that need it; nothing here is global.
//
// CreateSample writes the embedded sample_config.toml, which is what
// `dataset-curator config init` produces.
package config
