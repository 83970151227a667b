// Package appfs embeds files needed at runtime so the binaries stay
// self-contained (database migrations, notably).
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
