// Package content embeds the stock arena catalog.
package content

import (
	"embed"
	"io/fs"
)

//go:embed *.lua
var files embed.FS

// FS returns the stock catalog as a read-only file system of .lua files.
func FS() fs.FS {
	return files
}
