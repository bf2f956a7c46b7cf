package site

import "embed"

// EmbeddedAssets contains the static assets compiled into the binary:
// site.css, site.js and favicon.svg. Files in the static dir are served
// after these.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
