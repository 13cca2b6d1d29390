// Package web embeds the server-rendered templates and public assets.
package web

import "embed"

// Templates holds the page and layout templates rendered by view.Engine.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheet and other assets served under /static/.
//
//go:embed static/**/*
var Static embed.FS
