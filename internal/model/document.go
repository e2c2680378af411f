package model

import "time"

// These are pure domain models with no database-specific dependencies or tags.
// They can be used across layers (HTTP, service, storage) without coupling to persistence.

// GeneratedDocument is the result of merging a template with a data model.
type GeneratedDocument struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// SampleAsset is a bundled sample file, either a template or a data fixture.
type SampleAsset struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// SampleData is a data fixture as listed on the index page.
type SampleData struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ValidationResult describes an uploaded template after validation.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Generation statuses.
const (
	GenerationSuccess = "success"
	GenerationFailed  = "failed"
)

// Generation is an audit record of one document generation. It carries
// metadata only, never template, data or document content.
type Generation struct {
	ID           string    `json:"id"`
	TemplateName string    `json:"template_name"`
	TemplateSize int64     `json:"template_size"`
	OutputName   string    `json:"output_name"`
	OutputSize   int64     `json:"output_size"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}
