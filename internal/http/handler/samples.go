package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"odtplayground/internal/samples"
)

func getSample(c *fiber.Ctx, catalog samples.Catalog, kind samples.Kind) error {
	asset, err := catalog.Get(c.UserContext(), kind, c.Params("filename"))
	if err != nil {
		if errors.Is(err, samples.ErrNotFound) {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "sample not found")
		}
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	if kind == samples.KindTemplate {
		c.Set(fiber.HeaderContentDisposition, contentDisposition(asset.Name))
	}
	c.Set(fiber.HeaderContentType, asset.ContentType)
	return c.Status(fiber.StatusOK).Send(asset.Content)
}

// SampleTemplate downloads an allow-listed sample template.
//
//	@Summary	Download a sample template
//	@Tags		samples
//	@Produce	application/vnd.oasis.opendocument.text
//	@Param		filename	path		string	true	"Sample template name"	Enums(carta-bienvenida.odt, factura-simple.odt)
//	@Success	200			{file}		binary
//	@Failure	404			{object}	errorPayload
//	@Failure	500			{object}	errorPayload
//	@Router		/api/samples/templates/{filename} [get]
func SampleTemplate(catalog samples.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return getSample(c, catalog, samples.KindTemplate)
	}
}

// SampleData returns an allow-listed sample data fixture.
//
//	@Summary	Get sample data
//	@Tags		samples
//	@Produce	json
//	@Param		filename	path		string	true	"Sample data name"	Enums(carta-bienvenida.json, factura-simple.json)
//	@Success	200			{object}	map[string]any
//	@Failure	404			{object}	errorPayload
//	@Failure	500			{object}	errorPayload
//	@Router		/api/samples/data/{filename} [get]
func SampleData(catalog samples.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return getSample(c, catalog, samples.KindData)
	}
}
