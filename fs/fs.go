package appfs

import "embed"

// FS holds the goose migrations.
//go:embed migrations
var FS embed.FS
