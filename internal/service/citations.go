package service

import (
	"regexp"
	"strings"

	"regchat-cli/internal/api"
)

// Markers the assistant uses when it appends its sources to a reply, e.g.
// "... Sumber: Perka 5 Tahun 2020 **Status Peraturan:** Berlaku, SE 12".
const (
	SourceMarker = "Sumber:"
	StatusMarker = "Status Peraturan:"
)

var (
	sourceMarkerRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(SourceMarker))
	statusMarkerRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(StatusMarker))
	emphasisRe     = regexp.MustCompile(`\*{1,2}`)
)

// ParsedContent is a message body split into markdown and cited sources.
type ParsedContent struct {
	Body      string
	Citations []api.Citation
}

// ParseContent splits content once on the source marker. Without a marker
// the whole string is the body and there are no citations.
func ParseContent(content string) ParsedContent {
	parts := sourceMarkerRe.Split(content, 2)
	if len(parts) < 2 {
		return ParsedContent{Body: content}
	}
	return ParsedContent{
		Body:      strings.TrimSpace(parts[0]),
		Citations: parseCitationList(parts[1]),
	}
}

func parseCitationList(s string) []api.Citation {
	var out []api.Citation
	for _, entry := range strings.Split(s, ",") {
		fields := statusMarkerRe.Split(entry, 2)
		c := api.Citation{Name: stripEmphasis(fields[0])}
		if len(fields) == 2 {
			c.Status = stripEmphasis(fields[1])
		}
		if c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func stripEmphasis(s string) string {
	return strings.TrimSpace(emphasisRe.ReplaceAllString(s, ""))
}

// ResolveContent prefers the structured citations a newer backend attaches
// to a message and falls back to parsing them out of the text.
func ResolveContent(msg api.Message) ParsedContent {
	parsed := ParseContent(msg.Content)
	if len(msg.Citations) == 0 {
		return parsed
	}
	var cites []api.Citation
	for _, c := range msg.Citations {
		c.Name = stripEmphasis(c.Name)
		c.Status = stripEmphasis(c.Status)
		if c.Name != "" {
			cites = append(cites, c)
		}
	}
	parsed.Citations = cites
	return parsed
}
