package editshell

import "embed"

// EmbeddedAssets contains static assets shipped with the shell: editmode.js,
// the browser side of the login, logout and OAuth callback flows.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
