package appfs

import "embed"

// FS holds the SQL migrations, email templates and static assets shipped inside the binaries.
//
//go:embed migrations all:templates assets
var FS embed.FS
