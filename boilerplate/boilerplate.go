// Package boilerplate contains the embedded templates for `orgkit init`.
package boilerplate

import "embed"

//go:embed templates
var TemplateFiles embed.FS
