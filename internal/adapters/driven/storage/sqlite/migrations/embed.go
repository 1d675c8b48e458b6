// Package migrations holds the schema for sync state, sync logs and the
// chunk registry. Files are named NNN_name.up.sql and NNN_name.down.sql and
// are applied in numeric order by the sqlite store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
