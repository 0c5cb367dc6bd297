package models

import (
	"fmt"
	"time"
)

// TemplateSource links a template to a data source. A disabled link keeps
// the association but excludes the source from rendering.
type TemplateSource struct {
	SourceID string `json:"source_id"`
	Enabled  bool   `json:"enabled"`
}

// Template is a document blueprint: a body of HTML text containing
// {{name}} and {{source_name.field}} placeholder tokens.
type Template struct {
	ID          string           `json:"id" badgerhold:"key"`
	UserID      string           `json:"user_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Body        string           `json:"body"`
	Sources     []TemplateSource `json:"sources,omitempty"`
	Active      bool             `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks required template fields.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if t.Body == "" {
		return fmt.Errorf("template body is required")
	}
	return nil
}

// EnabledSourceIDs returns the IDs of sources linked with an enabled link.
func (t *Template) EnabledSourceIDs() []string {
	var ids []string
	for _, link := range t.Sources {
		if link.Enabled {
			ids = append(ids, link.SourceID)
		}
	}
	return ids
}
