// Package file provides a TOML file-based configuration store.
package file
