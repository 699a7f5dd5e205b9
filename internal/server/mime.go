package server

import (
	"path"
	"strings"
)

const defaultContentType = "application/octet-stream"

// mimeTypes maps a lowercase extension without the dot to a content type.
var mimeTypes = map[string]string{
	"html": "text/html",
	"js":   "text/javascript",
	"css":  "text/css",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"json": "application/json",
	"txt":  "text/plain",
}

// extension returns the lowercased extension of the last path element
// without the dot. Dotfiles such as ".env" have no extension.
func extension(p string) string {
	base := path.Base(p)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// contentTypeFor looks the extension of p up in mimeTypes.
func contentTypeFor(p string) string {
	if ct, ok := mimeTypes[extension(p)]; ok {
		return ct
	}
	return defaultContentType
}

// uploadExtension returns the segment of a "type/subtype" content type that
// follows the first slash, stopping at any further slash. A value without a
// slash yields "undefined".
func uploadExtension(contentType string) string {
	parts := strings.Split(contentType, "/")
	if len(parts) < 2 {
		return "undefined"
	}
	return parts[1]
}
