package promptgen

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.prompt
var builtinTemplates embed.FS

// BuiltinTemplates exposes the bundled prompt templates so callers can serve
// or extend them without re-shipping the files. Paths are relative to the
// templates root, e.g. "summarize.prompt".
func BuiltinTemplates() fs.FS {
	fsys, err := fs.Sub(builtinTemplates, "templates")
	if err != nil {
		panic("promptgen: embedded templates missing: " + err.Error())
	}
	return fsys
}
