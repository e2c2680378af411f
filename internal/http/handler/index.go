package handler

import (
	"bytes"
	"io"

	"github.com/gofiber/fiber/v2"

	"odtplayground/internal/model"
	"odtplayground/internal/samples"
)

// IndexRenderer renders the HTML index page.
type IndexRenderer interface {
	RenderIndex(w io.Writer, templates []string, data []model.SampleData) error
}

// Index serves the playground page with the samples found in storage.
func Index(catalog samples.Catalog, view IndexRenderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var buf bytes.Buffer
		if err := view.RenderIndex(&buf, catalog.Templates(ctx), catalog.Data(ctx)); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Type("html")
		return c.Status(fiber.StatusOK).Send(buf.Bytes())
	}
}
