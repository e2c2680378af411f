package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"odtplayground/internal/jsondata"
	"odtplayground/internal/merge"
	"odtplayground/internal/model"
	"odtplayground/internal/repository"
)

const (
	// InvalidTemplateMessage is the response body for rejected templates.
	InvalidTemplateMessage = "Invalid ODT template file"

	defaultOutputFilename = "generated-document.odt"
	outputSuffix          = "-generated.odt"

	defaultPageLimit = 10
	maxPageLimit     = 100

	statusInvalid = "invalid"
)

// ErrInvalidTemplate is returned when the uploaded bytes are not a usable template.
var ErrInvalidTemplate = errors.New("invalid ODT template file")

// GenerationError reports a failure after the template passed validation:
// malformed JSON data, an unresolvable placeholder or a stream failure.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "Failed to generate document: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GenerateInput is one generation request.
type GenerateInput struct {
	Template []byte
	// Filename is the client-supplied template name, possibly empty.
	Filename string
	Data     string
}

// GenerationListResult is the service-level DTO for paginated audit records.
type GenerationListResult struct {
	Items  []model.Generation `json:"data"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// DocumentService defines the use cases of the playground.
type DocumentService interface {
	// Generate validates the template, parses the JSON data and merges both.
	// It returns ErrInvalidTemplate or a *GenerationError on failure.
	Generate(ctx context.Context, in GenerateInput) (*model.GeneratedDocument, error)

	// Validate reports whether template can be used for generation.
	Validate(ctx context.Context, template []byte, filename string, size int64) *model.ValidationResult

	// ListGenerations returns audit records using limit/offset and a total count.
	// With auditing disabled it returns an empty page.
	ListGenerations(ctx context.Context, limit, offset int) (*GenerationListResult, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	engine  merge.Engine
	repo    repository.GenerationRepository
	metrics *Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewDocumentService constructs a new DocumentService. repo and metrics may be nil.
func NewDocumentService(engine merge.Engine, repo repository.GenerationRepository, metrics *Metrics, logger *zap.Logger) DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentService{
		engine:  engine,
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// OutputFilename derives the generated document name from the template name.
func OutputFilename(templateName string) string {
	if templateName == "" {
		return defaultOutputFilename
	}
	base := templateName
	if strings.HasSuffix(strings.ToLower(base), ".odt") {
		base = base[:len(base)-len(".odt")]
	}
	return base + outputSuffix
}

func (s *documentService) Generate(ctx context.Context, in GenerateInput) (*model.GeneratedDocument, error) {
	start := s.now()
	log := s.logger.With(zap.String("template", in.Filename), zap.Int("data_length", len(in.Data)))
	log.Info("generate document requested")

	if !s.engine.IsValidTemplate(in.Template) {
		s.record(ctx, in, start, statusInvalid, nil, ErrInvalidTemplate)
		return nil, ErrInvalidTemplate
	}

	data, err := jsondata.ParseJSONToMap(in.Data)
	if err != nil {
		genErr := &GenerationError{Err: err}
		log.Error("error generating document", zap.Error(genErr))
		s.record(ctx, in, start, model.GenerationFailed, nil, genErr)
		return nil, genErr
	}

	out, err := s.engine.GenerateDocument(ctx, in.Template, data)
	if err != nil {
		genErr := &GenerationError{Err: err}
		log.Error("error generating document", zap.Error(genErr))
		s.record(ctx, in, start, model.GenerationFailed, nil, genErr)
		return nil, genErr
	}

	doc := &model.GeneratedDocument{
		Filename:    OutputFilename(in.Filename),
		ContentType: merge.MediaTypeODT,
		Content:     out,
	}
	log.Info("document generated", zap.String("output", doc.Filename), zap.Int("size", len(out)))
	s.record(ctx, in, start, model.GenerationSuccess, doc, nil)
	return doc, nil
}

// record updates metrics and writes the audit row. Audit failures never
// change the outcome of the request.
func (s *documentService) record(ctx context.Context, in GenerateInput, start time.Time, status string, doc *model.GeneratedDocument, cause error) {
	elapsed := s.now().Sub(start)
	s.metrics.observeGeneration(status, elapsed.Seconds())

	if s.repo == nil {
		return
	}

	g := &model.Generation{
		ID:           uuid.NewString(),
		TemplateName: in.Filename,
		TemplateSize: int64(len(in.Template)),
		Status:       model.GenerationSuccess,
		DurationMs:   elapsed.Milliseconds(),
		CreatedAt:    start.UTC(),
	}
	if doc != nil {
		g.OutputName = doc.Filename
		g.OutputSize = int64(len(doc.Content))
	}
	if cause != nil {
		g.Status = model.GenerationFailed
		g.Error = cause.Error()
	}

	if _, err := s.repo.Create(ctx, g); err != nil {
		s.logger.Warn("failed to record generation", zap.String("generation_id", g.ID), zap.Error(err))
	}
}

func (s *documentService) Validate(ctx context.Context, template []byte, filename string, size int64) *model.ValidationResult {
	valid := s.engine.IsValidTemplate(template)
	s.metrics.observeValidation(valid)
	s.logger.Info("template validated", zap.String("template", filename), zap.Bool("valid", valid))
	return &model.ValidationResult{Valid: valid, Filename: filename, Size: size}
}

// ListGenerations returns paginated audit records without exposing repository types.
func (s *documentService) ListGenerations(ctx context.Context, limit, offset int) (*GenerationListResult, error) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	if s.repo == nil {
		return &GenerationListResult{Items: []model.Generation{}, Limit: limit, Offset: offset}, nil
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &GenerationListResult{Items: res.Items, Total: res.Total, Limit: limit, Offset: offset}, nil
}
