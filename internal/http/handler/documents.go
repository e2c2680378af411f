package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"odtplayground/internal/service"
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// contentDisposition builds an attachment header that keeps the file name as
// typed. Non-ASCII names get an RFC 5987 filename* next to an ASCII fallback.
func contentDisposition(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)

	fallback := strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf {
			return '_'
		}
		return r
	}, name)

	v := `attachment; filename="` + quoteEscaper.Replace(fallback) + `"`
	if fallback != name {
		v += "; filename*=UTF-8''" + encodeExtValue(name)
	}
	return v
}

// encodeExtValue percent-encodes everything outside RFC 5987 attr-char.
func encodeExtValue(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			strings.IndexByte("!#$&+-.^_`|~", c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

// readUpload reads a multipart file fully and closes it.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	return b, nil
}

// GenerateDocument merges an uploaded ODT template with JSON data.
//
//	@Summary		Generate a document
//	@Description	Merges the uploaded ODT template with the JSON data model and returns the generated ODT.
//	@Tags			documents
//	@Accept			mpfd
//	@Produce		application/vnd.oasis.opendocument.text
//	@Param			template	formData	file	true	"ODT template"
//	@Param			data		formData	string	true	"JSON object with the data model"
//	@Success		200			{file}		binary
//	@Failure		400			{string}	string	"Invalid ODT template file"
//	@Failure		500			{object}	generationErrorPayload
//	@Router			/api/generate [post]
func GenerateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("template")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "template file is required")
		}
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "bad request")
		}
		values, ok := form.Value["data"]
		if !ok || len(values) == 0 {
			return writeError(c, fiber.StatusBadRequest, "DATA_REQUIRED", "data is required")
		}

		tpl, err := readUpload(fh)
		if err != nil {
			return writeGenerationError(c, &service.GenerationError{Err: err})
		}

		doc, err := svc.Generate(c.UserContext(), service.GenerateInput{
			Template: tpl,
			Filename: fh.Filename,
			Data:     values[0],
		})
		if err != nil {
			if errors.Is(err, service.ErrInvalidTemplate) {
				c.Type("txt")
				return c.Status(fiber.StatusBadRequest).SendString(service.InvalidTemplateMessage)
			}
			var genErr *service.GenerationError
			if !errors.As(err, &genErr) {
				genErr = &service.GenerationError{Err: err}
			}
			return writeGenerationError(c, genErr)
		}

		c.Set(fiber.HeaderContentDisposition, contentDisposition(doc.Filename))
		c.Set(fiber.HeaderContentType, doc.ContentType)
		return c.Status(fiber.StatusOK).Send(doc.Content)
	}
}

// generationErrorPayload is the body of a failed generation.
type generationErrorPayload struct {
	Error string `json:"error" example:"Failed to generate document: template error"`
}

func writeGenerationError(c *fiber.Ctx, err *service.GenerationError) error {
	return c.Status(fiber.StatusInternalServerError).JSON(generationErrorPayload{Error: err.Error()})
}

// ValidateTemplate reports whether an uploaded file is a usable template.
//
//	@Summary		Validate a template
//	@Tags			documents
//	@Accept			mpfd
//	@Produce		json
//	@Param			template	formData	file	true	"ODT template"
//	@Success		200			{object}	model.ValidationResult
//	@Failure		400			{object}	errorPayload
//	@Router			/api/validate [post]
func ValidateTemplate(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("template")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "template file is required")
		}

		tpl, err := readUpload(fh)
		if err != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"valid": false, "error": err.Error()})
		}

		return c.Status(fiber.StatusOK).JSON(svc.Validate(c.UserContext(), tpl, fh.Filename, fh.Size))
	}
}
