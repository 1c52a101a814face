// Package driven defines the secondary ports: interfaces the core
// requires from infrastructure adapters (storage, configuration).
package driven
