package app

import (
	"log"
	"mime"
)

// Minimal base images ship without /etc/mime.types, which breaks the static
// file server's Content-Type for stylesheets.
func init() {
	ensureMimeType(".css", "text/css; charset=utf-8")
	ensureMimeType(".svg", "image/svg+xml")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("emsphere: register MIME type for %s: %v", ext, err)
	}
}
