// Package services implements the application core: query
// classification, flat and hierarchical retrieval, work
// canonicalization, catalog listing, batch ingestion and the
// consistency audit. Services depend only on domain types and ports.
package services
