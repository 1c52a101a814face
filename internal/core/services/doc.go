// Package services implements the driving ports on top of the driven
// ports. Services hold the use-case logic between adapters.
package services
