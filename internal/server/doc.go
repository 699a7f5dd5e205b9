// Package server implements the HTTP server for static-drop. The public
// listener dispatches every request to either the JSON upload handler or the
// static file responder; an optional admin listener exposes health, metrics
// and the upload ledger.
package server
