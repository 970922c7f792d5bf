package service

import (
	"net/url"
	"strings"
)

// CitedFileExt is appended to every cited document name.
const CitedFileExt = ".pdf"

// FileURL builds the static file URL for a cited document:
// {filesBase}/{percent-encoded name}.pdf
func FileURL(filesBase, name string) string {
	base := strings.TrimRight(filesBase, "/")
	return base + "/" + escapeComponent(name+CitedFileExt)
}

// componentUnescaper turns url.QueryEscape output into browser
// encodeURIComponent output: spaces as %20 and !'()* left as-is.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
