package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// GetTemplatesFS returns the embedded templates filesystem
func GetTemplatesFS() fs.FS {
	sub, _ := fs.Sub(templatesFS, "templates")
	return sub
}

// TemplatesEmbedFS returns the raw embedded filesystem, rooted above the
// templates directory. The HTML renderer wants this form.
func TemplatesEmbedFS() embed.FS {
	return templatesFS
}

// GetStaticFS returns the embedded static files filesystem
func GetStaticFS() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}
