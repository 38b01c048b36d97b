// Package dashboard provides the embedded web UI assets for habitboard.
//
// This package uses Go's embed directive to include the dashboard HTML, CSS,
// and JavaScript at compile time. This enables single-binary deployment
// without external asset files.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Single-screen habit list with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
