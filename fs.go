package hukumu

import "embed"

// FS embeds runtime assets (email templates).
// The base layouts start with "_" and must be listed explicitly; directory
// patterns skip underscore-prefixed files.
//go:embed assets/templates/email
//go:embed assets/templates/email/_base.txt
//go:embed assets/templates/email/_base.gohtml
var FS embed.FS
