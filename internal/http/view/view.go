// Package view renders the playground's HTML index page and holds its
// static assets.
package view

import (
	"embed"
	"fmt"
	"io"
	"io/fs"

	"github.com/flosch/pongo2/v6"

	"odtplayground/internal/model"
)

//go:embed templates static
var files embed.FS

const indexTemplate = "index.html"

// Title is shown in the page header.
const Title = "JODReports Playground"

// View renders the index page. Templates are parsed once in New.
type View struct {
	index *pongo2.Template
}

// New loads the embedded templates.
func New() (*View, error) {
	tplFS, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, err
	}
	set := pongo2.NewSet("view", pongo2.NewFSLoader(tplFS))
	index, err := set.FromFile(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("view: load %s: %w", indexTemplate, err)
	}
	return &View{index: index}, nil
}

// RenderIndex writes the index page listing the available samples.
func (v *View) RenderIndex(w io.Writer, templates []string, data []model.SampleData) error {
	err := v.index.ExecuteWriter(pongo2.Context{
		"title":           Title,
		"sampleTemplates": templates,
		"sampleData":      data,
	}, w)
	if err != nil {
		return fmt.Errorf("view: render %s: %w", indexTemplate, err)
	}
	return nil
}

// Static returns the script and style assets, rooted at "static".
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
