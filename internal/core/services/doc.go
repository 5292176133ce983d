// Package services implements the driving ports: the ingest pipeline and
// the retrieval use case. Services depend only on domain types and driven
// ports, never on concrete adapters.
package services
