package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"testing/fstest"

	"odtplayground/docs"
	"odtplayground/internal/http/middleware"
	"odtplayground/internal/jsondata"
	"odtplayground/internal/model"
	"odtplayground/internal/samples"
	sampleMocks "odtplayground/internal/samples/mocks"
	"odtplayground/internal/service"
	serviceMocks "odtplayground/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const odtMediaType = "application/vnd.oasis.opendocument.text"

type formFile struct {
	field, name string
	content     []byte
}

// multipartBody builds a multipart/form-data request body.
func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/api/health", Health())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"status": "UP", "service": "JODReports Playground"}, body)
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Use(middleware.RequestID())
	app.Post("/api/generate", GenerateDocument(mockSvc))

	tplFile := formFile{field: "template", name: "carta.odt", content: []byte("odt-template")}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Generate", mock.Anything, service.GenerateInput{
			Template: []byte("odt-template"),
			Filename: "carta.odt",
			Data:     `{"nombre":"Ana"}`,
		}).Return(&model.GeneratedDocument{
			Filename:    "carta-generated.odt",
			ContentType: odtMediaType,
			Content:     []byte("generated"),
		}, nil).Once()

		body, ct := multipartBody(t, map[string]string{"data": `{"nombre":"Ana"}`}, tplFile)
		req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, odtMediaType, resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="carta-generated.odt"`, resp.Header.Get("Content-Disposition"))
		assert.Equal(t, "generated", readBody(t, resp))
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid template", func(t *testing.T) {
		mockSvc.On("Generate", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidTemplate).Once()

		body, ct := multipartBody(t, map[string]string{"data": `{}`},
			formFile{field: "template", name: "x.odt", content: []byte("This is not a valid ODT file")})
		req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
		assert.Equal(t, "Invalid ODT template file", readBody(t, resp))
		mockSvc.AssertExpectations(t)
	})

	t.Run("generation failure", func(t *testing.T) {
		genErr := &service.GenerationError{Err: jsondata.ErrParse}
		mockSvc.On("Generate", mock.Anything, mock.Anything).Return(nil, genErr).Once()

		body, ct := multipartBody(t, map[string]string{"data": `{not json`}, tplFile)
		req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "Failed to generate document: invalid JSON data", res["error"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("unexpected service error", func(t *testing.T) {
		mockSvc.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

		body, ct := multipartBody(t, map[string]string{"data": `{}`}, tplFile)
		req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "Failed to generate document: boom", res["error"])
	})

	t.Run("missing template", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"data": `{}`})
		req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
		assert.NotEmpty(t, res.RequestID)
	})

	t.Run("missing data", func(t *testing.T) {
		body, ct := multipartBody(t, nil, tplFile)
		req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "DATA_REQUIRED", res.Error.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestValidateTemplate(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/api/validate", ValidateTemplate(mockSvc))

	t.Run("valid", func(t *testing.T) {
		mockSvc.On("Validate", mock.Anything, []byte("odt"), "factura.odt", int64(3)).
			Return(&model.ValidationResult{Valid: true, Filename: "factura.odt", Size: 3}).Once()

		body, ct := multipartBody(t, nil, formFile{field: "template", name: "factura.odt", content: []byte("odt")})
		req := httptest.NewRequest(http.MethodPost, "/api/validate", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, map[string]any{"valid": true, "filename": "factura.odt", "size": float64(3)}, res)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid", func(t *testing.T) {
		mockSvc.On("Validate", mock.Anything, []byte("junk"), "junk.odt", int64(4)).
			Return(&model.ValidationResult{Valid: false, Filename: "junk.odt", Size: 4}).Once()

		body, ct := multipartBody(t, nil, formFile{field: "template", name: "junk.odt", content: []byte("junk")})
		req := httptest.NewRequest(http.MethodPost, "/api/validate", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var res model.ValidationResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.False(t, res.Valid)
		assert.Equal(t, int64(4), res.Size)
	})

	t.Run("missing template", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"other": "x"})
		req := httptest.NewRequest(http.MethodPost, "/api/validate", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})
}

func TestSampleTemplate(t *testing.T) {
	mockCatalog := new(sampleMocks.MockCatalog)
	app := fiber.New()
	app.Get("/api/samples/templates/:filename", SampleTemplate(mockCatalog))

	t.Run("success", func(t *testing.T) {
		mockCatalog.On("Get", mock.Anything, samples.KindTemplate, "factura-simple.odt").Return(&model.SampleAsset{
			Name:        "factura-simple.odt",
			Kind:        "template",
			ContentType: odtMediaType,
			Content:     []byte("odt"),
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/samples/templates/factura-simple.odt", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, odtMediaType, resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="factura-simple.odt"`, resp.Header.Get("Content-Disposition"))
		assert.Equal(t, "odt", readBody(t, resp))
	})

	t.Run("not allowed", func(t *testing.T) {
		mockCatalog.On("Get", mock.Anything, samples.KindTemplate, "secret.odt").Return(nil, samples.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/samples/templates/secret.odt", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("read failure", func(t *testing.T) {
		mockCatalog.On("Get", mock.Anything, samples.KindTemplate, "carta-bienvenida.odt").Return(nil, errors.New("io")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/samples/templates/carta-bienvenida.odt", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	mockCatalog.AssertExpectations(t)
}

func TestSampleData(t *testing.T) {
	mockCatalog := new(sampleMocks.MockCatalog)
	app := fiber.New()
	app.Get("/api/samples/data/:filename", SampleData(mockCatalog))

	mockCatalog.On("Get", mock.Anything, samples.KindData, "carta-bienvenida.json").Return(&model.SampleAsset{
		Name:        "carta-bienvenida.json",
		Kind:        "data",
		ContentType: "application/json",
		Content:     []byte(`{"nombre":"Ana"}`),
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/samples/data/carta-bienvenida.json", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, `{"nombre":"Ana"}`, readBody(t, resp))
	mockCatalog.AssertExpectations(t)
}

func TestListGenerations(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/api/generations", ListGenerations(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.GenerationListResult{
			Items: []model.Generation{{ID: "g-1", TemplateName: "carta.odt", Status: model.GenerationSuccess}},
			Total: 1,
			Limit: 5,
		}
		mockSvc.On("ListGenerations", mock.Anything, 5, 0).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/generations?limit=5&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result service.GenerationListResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/generations?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/generations?offset=-x", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "INVALID_OFFSET", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("ListGenerations", mock.Anything, 10, 0).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/generations", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

type stubView struct {
	templates []string
	data      []model.SampleData
	err       error
}

func (v *stubView) RenderIndex(w io.Writer, templates []string, data []model.SampleData) error {
	v.templates, v.data = templates, data
	if v.err != nil {
		return v.err
	}
	_, err := io.WriteString(w, "<html>index</html>")
	return err
}

func TestIndex(t *testing.T) {
	mockCatalog := new(sampleMocks.MockCatalog)
	mockCatalog.On("Templates", mock.Anything).Return([]string{"factura-simple.odt"})
	mockCatalog.On("Data", mock.Anything).Return([]model.SampleData{{Name: "factura-simple.json", Content: "{}"}})

	view := &stubView{}
	app := fiber.New()
	app.Get("/", Index(mockCatalog, view))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>index</html>", readBody(t, resp))
	assert.Equal(t, []string{"factura-simple.odt"}, view.templates)
	assert.Len(t, view.data, 1)

	view.err = errors.New("broken template")
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockCatalog := new(sampleMocks.MockCatalog)
	mockCatalog.On("Templates", mock.Anything).Return([]string(nil))
	mockCatalog.On("Data", mock.Anything).Return([]model.SampleData(nil))

	RegisterRoutes(app, Deps{
		Documents: new(serviceMocks.MockDocumentService),
		Samples:   mockCatalog,
		View:      &stubView{},
		Static:    fstest.MapFS{"js/app.js": {Data: []byte("console.log('ok')")}},
	})

	t.Run("health", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("index", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("static script", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/js/app.js", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "console.log('ok')", readBody(t, resp))
	})

	t.Run("swagger doc uses request host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://playground.test/swagger/doc.json", nil)
		req.Header.Set("X-Forwarded-Proto", "https, http")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, `"host": "playground.test"`)
		assert.Contains(t, body, `"https"`)
		assert.Contains(t, body, "/api/generate")
		// the shared spec is never modified
		assert.Empty(t, docs.SwaggerInfo.Host)
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// health only allows GET
		req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}

func TestSwaggerDoc_ConcurrentHosts(t *testing.T) {
	app := fiber.New()
	app.Get("/swagger/doc.json", SwaggerDoc())

	hosts := []string{"a.test", "b.test", "c.test", "d.test"}
	var wg sync.WaitGroup
	for _, h := range hosts {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "http://"+host+"/swagger/doc.json", nil))
			if !assert.NoError(t, err) {
				return
			}
			b, err := io.ReadAll(resp.Body)
			assert.NoError(t, err)
			assert.Contains(t, string(b), `"host": "`+host+`"`)
			assert.Contains(t, string(b), `"http"`)
		}(h)
	}
	wg.Wait()
}

func TestGenerateDocument_ContentDisposition(t *testing.T) {
	tests := []struct {
		upload   string
		output   string
		expected string
	}{
		{"letter.odt", "letter-generated.odt", `attachment; filename="letter-generated.odt"`},
		{"my letter.odt", "my letter-generated.odt", `attachment; filename="my letter-generated.odt"`},
		{`a"b.odt`, `a"b-generated.odt`, `attachment; filename="a\"b-generated.odt"`},
		{"Carta María.odt", "Carta María-generated.odt",
			`attachment; filename="Carta Mar_a-generated.odt"; filename*=UTF-8''Carta%20Mar%C3%ADa-generated.odt`},
	}

	for _, tt := range tests {
		t.Run(tt.upload, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockDocumentService)
			mockSvc.On("Generate", mock.Anything, mock.Anything).Return(&model.GeneratedDocument{
				Filename:    tt.output,
				ContentType: odtMediaType,
				Content:     []byte("generated"),
			}, nil).Once()

			app := fiber.New()
			app.Post("/api/generate", GenerateDocument(mockSvc))

			body, ct := multipartBody(t, map[string]string{"data": `{}`},
				formFile{field: "template", name: tt.upload, content: []byte("odt-template")})
			req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
			req.Header.Set("Content-Type", ct)
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, tt.expected, resp.Header.Get("Content-Disposition"))

			_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
			require.NoError(t, err)
			assert.Equal(t, tt.output, params["filename"])
		})
	}
}

func TestContentDisposition_StripsControlCharacters(t *testing.T) {
	assert.Equal(t, `attachment; filename="ab-generated.odt"`, contentDisposition("a\r\nb-generated.odt"))
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())

	tests := []struct {
		path       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"/too-large", fiber.ErrRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"/bad", fiber.ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{"/media", fiber.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		{"/unavailable", fiber.ErrServiceUnavailable, http.StatusServiceUnavailable, "INTERNAL_ERROR"},
		{"/plain", errors.New("db password leaked"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		err := tt.err
		app.Get(tt.path, func(c *fiber.Ctx) error { return err })
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(middleware.RequestIDHeader, "rid-1")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var res errorPayload
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
			assert.Equal(t, tt.wantCode, res.Error.Code)
			assert.Equal(t, "rid-1", res.RequestID)
			assert.NotContains(t, res.Error.Message, "password")
		})
	}
}
