package migrations

import "embed"

// PostgresFS holds the payout-history schema migrations, applied in
// lexical order.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the draw-analytics schema migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
