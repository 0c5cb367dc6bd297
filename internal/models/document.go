package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RenderedDocument is a stored snapshot of a completed render: the final
// HTML with every resolvable token substituted, plus the caller variables
// that were used. Rasterizing the HTML to a binary document is the job of
// an external collaborator.
type RenderedDocument struct {
	ID           string            `json:"id" badgerhold:"key"`
	TemplateID   string            `json:"template_id" badgerhold:"index"`
	TemplateName string            `json:"template_name"`
	HTML         string            `json:"html"`
	Variables    map[string]string `json:"variables,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

var filenameSanitizeRegex = regexp.MustCompile(`[^a-z0-9\-_]`)

// Filename returns a download filename derived from the template name and
// generation timestamp.
func (d *RenderedDocument) Filename() string {
	name := strings.ToLower(strings.ReplaceAll(d.TemplateName, " ", "-"))
	name = filenameSanitizeRegex.ReplaceAllString(name, "")
	if name == "" {
		name = "document"
	}
	ts := d.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("%s_%s.html", name, ts.Format("20060102_150405"))
}
