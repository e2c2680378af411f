package merge

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

const contentHeader = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
	`xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" office:version="1.3">` +
	`<office:body><office:text>`

const contentFooter = `</office:text></office:body></office:document-content>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<office:document-styles xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
	`xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" office:version="1.3"/>`

type entry struct {
	name   string
	body   string
	method uint16
}

// buildArchive writes entries in order into a zip archive.
func buildArchive(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildODT returns a minimal ODT whose body is paragraphs.
func buildODT(t *testing.T, paragraphs string) []byte {
	t.Helper()
	return buildArchive(t,
		entry{name: "mimetype", body: MediaTypeODT, method: zip.Store},
		entry{name: "META-INF/manifest.xml", body: `<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0"/>`, method: zip.Deflate},
		entry{name: "content.xml", body: contentHeader + paragraphs + contentFooter, method: zip.Deflate},
		entry{name: "styles.xml", body: stylesXML, method: zip.Deflate},
	)
}

// readEntries unpacks an archive into name -> content, keeping the order.
func readEntries(t *testing.T, doc []byte) ([]string, map[string]string) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	contents := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		names = append(names, f.Name)
		contents[f.Name] = string(b)
	}
	return names, contents
}
