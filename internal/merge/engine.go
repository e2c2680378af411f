// Package merge fills OpenDocument templates with a data model.
//
// A template is an ODT archive whose content.xml and styles.xml contain
// ${...} placeholders. The text inside a placeholder is a text/template
// action with the Sprig function library available, so besides plain
// fields (${nombre}, ${cliente.direccion}) authors can write conditionals
// and loops (${range .items} ... ${end}). Every other archive entry is
// copied to the generated document untouched.
package merge

import (
	"context"
	"errors"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MediaTypeODT is the media type of OpenDocument text documents.
const MediaTypeODT = "application/vnd.oasis.opendocument.text"

// DefaultMaxEntrySize bounds the decompressed size of a templated archive entry.
const DefaultMaxEntrySize int64 = 32 << 20

var (
	// ErrTemplate reports a template that cannot be parsed or executed against
	// the supplied data model, e.g. a placeholder referencing a missing field.
	ErrTemplate = errors.New("template error")
	// ErrInvalidTemplate reports bytes that are not a usable ODT template archive.
	ErrInvalidTemplate = fmt.Errorf("%w: invalid ODT template", ErrTemplate)
	// ErrIO reports a failure while reading or writing archive streams.
	ErrIO = errors.New("document stream error")
)

// Engine is the narrow contract the rest of the service needs from a
// document templating engine.
type Engine interface {
	// IsValidTemplate reports whether template can be opened as a template.
	// It never panics and never returns an error.
	IsValidTemplate(template []byte) bool
	// GenerateDocument binds data to template and returns the merged document.
	GenerateDocument(ctx context.Context, template []byte, data map[string]any) ([]byte, error)
}

// Option configures an ODTEngine.
type Option func(*ODTEngine)

// WithLogger sets the logger used for validation warnings and debug output.
func WithLogger(l *zap.Logger) Option {
	return func(e *ODTEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxEntrySize overrides DefaultMaxEntrySize.
func WithMaxEntrySize(n int64) Option {
	return func(e *ODTEngine) {
		if n > 0 {
			e.maxEntrySize = n
		}
	}
}

// WithFuncs adds template functions on top of the default function map.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *ODTEngine) {
		for name, fn := range funcs {
			e.funcs[name] = fn
		}
	}
}

// ODTEngine implements Engine for OpenDocument archives.
// It holds no per-call state and is safe for concurrent use.
type ODTEngine struct {
	logger       *zap.Logger
	maxEntrySize int64
	funcs        template.FuncMap
	tracer       trace.Tracer
}

var _ Engine = (*ODTEngine)(nil)

// NewODTEngine constructs an ODTEngine.
func NewODTEngine(opts ...Option) *ODTEngine {
	e := &ODTEngine{
		logger:       zap.NewNop(),
		maxEntrySize: DefaultMaxEntrySize,
		funcs:        defaultFuncs(),
		tracer:       otel.Tracer("odtplayground/internal/merge"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsValidTemplate opens the archive and parses every templated entry.
// Data-dependent problems such as missing fields can only surface in
// GenerateDocument.
func (e *ODTEngine) IsValidTemplate(b []byte) (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("invalid template", zap.Any("panic", r))
			valid = false
		}
	}()

	if _, err := e.open(b); err != nil {
		e.logger.Warn("invalid template", zap.Int("size", len(b)), zap.Error(err))
		return false
	}
	return true
}

// GenerateDocument opens the template, executes its placeholders against data
// and serializes the merged archive.
func (e *ODTEngine) GenerateDocument(ctx context.Context, b []byte, data map[string]any) ([]byte, error) {
	_, span := e.tracer.Start(ctx, "merge.GenerateDocument", trace.WithAttributes(
		attribute.Int("template.size", len(b)),
		attribute.Int("data.keys", len(data)),
	))
	defer span.End()

	tpl, err := e.open(b)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open template")
		return nil, err
	}

	e.logger.Debug("processing template", zap.Strings("entries", tpl.templatedNames()), zap.Int("data_keys", len(data)))

	out, err := tpl.render(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render template")
		return nil, err
	}

	span.SetAttributes(attribute.Int("document.size", len(out)))
	e.logger.Debug("document generated", zap.Int("size", len(out)))
	return out, nil
}
