package handler

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/swagger"

	"odtplayground/docs"
	"odtplayground/internal/samples"
	"odtplayground/internal/service"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Documents service.DocumentService
	Samples   samples.Catalog
	View      IndexRenderer
	// Static holds the page assets served under /js.
	Static fs.FS
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; use cases live in the service layer.
func RegisterRoutes(app *fiber.App, d Deps) {
	// Swagger UI; the spec itself carries the host and scheme of each request
	app.Get("/swagger/doc.json", SwaggerDoc())
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/healthz", LivenessProbe())

	if d.View != nil {
		app.Get("/", Index(d.Samples, d.View))
	}
	if d.Static != nil {
		app.Use("/js", filesystem.New(filesystem.Config{
			Root:       http.FS(d.Static),
			PathPrefix: "js",
		}))
	}

	api := app.Group("/api")
	api.Get("/health", Health())
	api.Post("/generate", GenerateDocument(d.Documents))
	api.Post("/validate", ValidateTemplate(d.Documents))
	api.Get("/generations", ListGenerations(d.Documents))

	sampleRoutes := api.Group("/samples")
	sampleRoutes.Get("/templates/:filename", SampleTemplate(d.Samples))
	sampleRoutes.Get("/data/:filename", SampleData(d.Samples))
}

// SwaggerDoc serves the API spec with the host and scheme the client used.
// Each request renders its own copy of docs.SwaggerInfo.
func SwaggerDoc() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get(fiber.HeaderXForwardedProto); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		spec := *docs.SwaggerInfo
		spec.Host = c.Hostname()
		spec.Schemes = []string{scheme}

		c.Type("json")
		return c.Status(fiber.StatusOK).SendString(spec.ReadDoc())
	}
}
