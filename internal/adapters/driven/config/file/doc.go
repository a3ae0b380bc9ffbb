// Package file holds the TOML config store behind ~/.fragmenter/config.toml.
package file
