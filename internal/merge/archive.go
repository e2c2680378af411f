package merge

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
)

const (
	mimetypeEntry = "mimetype"
	contentEntry  = "content.xml"
	stylesEntry   = "styles.xml"

	odfMediaTypePrefix = "application/vnd.oasis.opendocument"
)

// entries whose placeholders are executed; headers and footers live in styles.xml
var templatedEntries = []string{contentEntry, stylesEntry}

func isTemplated(name string) bool {
	for _, n := range templatedEntries {
		if n == name {
			return true
		}
	}
	return false
}

// odtTemplate is an opened template archive ready to be rendered.
type odtTemplate struct {
	// mimetype is written first and stored, whatever the input used
	mimetype  []byte
	files     []*zip.File
	templates map[string]*template.Template
}

func (t *odtTemplate) templatedNames() []string {
	names := make([]string, 0, len(t.templates))
	for _, f := range t.files {
		if _, ok := t.templates[f.Name]; ok {
			names = append(names, f.Name)
		}
	}
	return names
}

// open checks the archive structure and parses every templated entry.
func (e *ODTEngine) open(b []byte) (*odtTemplate, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidTemplate)
	}

	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", ErrInvalidTemplate, err)
	}

	tpl := &odtTemplate{templates: make(map[string]*template.Template)}
	hasContent := false

	for _, f := range zr.File {
		switch {
		case f.Name == mimetypeEntry:
			raw, err := e.readEntry(f)
			if err != nil {
				return nil, err
			}
			if mt := strings.TrimSpace(string(raw)); !strings.HasPrefix(mt, odfMediaTypePrefix) {
				return nil, fmt.Errorf("%w: unsupported mimetype %q", ErrInvalidTemplate, mt)
			}
			tpl.mimetype = raw
			continue
		case f.Name == contentEntry:
			hasContent = true
		}

		if isTemplated(f.Name) {
			src, err := e.readEntry(f)
			if err != nil {
				return nil, err
			}
			tmpl, err := e.parseEntry(f.Name, string(src))
			if err != nil {
				return nil, err
			}
			tpl.templates[f.Name] = tmpl
		}
		tpl.files = append(tpl.files, f)
	}

	if !hasContent {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidTemplate, contentEntry)
	}
	return tpl, nil
}

func (e *ODTEngine) parseEntry(name, src string) (*template.Template, error) {
	text, err := rewritePlaceholders(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tmpl, err := template.New(name).
		Delims(leftDelim, rightDelim).
		Option("missingkey=error").
		Funcs(e.funcs).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplate, name, err)
	}
	return tmpl, nil
}

func (e *ODTEngine) readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > uint64(e.maxEntrySize) {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidTemplate, f.Name, e.maxEntrySize)
	}
	rc, err := f.Open()
	if err != nil {
		if errors.Is(err, zip.ErrAlgorithm) {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, f.Name, err)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, e.maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrIO, f.Name, err)
	}
	if int64(len(data)) > e.maxEntrySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidTemplate, f.Name, e.maxEntrySize)
	}
	return data, nil
}

// render executes the templated entries and writes the merged archive.
func (t *odtTemplate) render(data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// ODF requires an uncompressed mimetype as the first entry of the package
	if t.mimetype != nil {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: mimetypeEntry, Method: zip.Store})
		if err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrIO, mimetypeEntry, err)
		}
		if _, err := w.Write(t.mimetype); err != nil {
			return nil, fmt.Errorf("%w: write %s: %v", ErrIO, mimetypeEntry, err)
		}
	}

	for _, f := range t.files {
		tmpl, ok := t.templates[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("%w: copy %s: %v", ErrIO, f.Name, err)
			}
			continue
		}

		var out bytes.Buffer
		if err := tmpl.Execute(&out, data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
		}
		if err := wellFormed(out.Bytes()); err != nil {
			return nil, fmt.Errorf("%w: %s is not well-formed after merge: %v", ErrTemplate, f.Name, err)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", ErrIO, f.Name, err)
		}
		if _, err := w.Write(out.Bytes()); err != nil {
			return nil, fmt.Errorf("%w: write %s: %v", ErrIO, f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: finish archive: %v", ErrIO, err)
	}
	return buf.Bytes(), nil
}

func wellFormed(b []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(b))
	for {
		if _, err := dec.Token(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
