// Package migrations ships the schema for both backends inside the binary:
// PostgreSQL holds periods and trade records, ClickHouse holds the price
// snapshot series. Files run in lexical order, so they are numbered.
package migrations

import "embed"

//go:embed postgres/*.sql
var PostgresFS embed.FS

//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
