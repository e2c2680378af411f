// Package samples exposes the allow-listed sample templates and data
// fixtures offered by the playground.
package samples

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"go.uber.org/zap"

	"odtplayground/internal/merge"
	"odtplayground/internal/model"
	"odtplayground/internal/storage"
)

//go:embed assets
var assets embed.FS

// Bundled returns the samples compiled into the binary, rooted so that keys
// look like "templates/factura-simple.odt".
func Bundled() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// ErrNotFound is returned for names outside the allow-list and for
// allow-listed samples missing from storage.
var ErrNotFound = errors.New("sample not found")

// maxSampleSize bounds reads of a single sample.
const maxSampleSize = 16 << 20

// Kind distinguishes templates from data fixtures.
type Kind string

const (
	KindTemplate Kind = "template"
	KindData     Kind = "data"
)

var (
	templateNames = [...]string{"carta-bienvenida.odt", "factura-simple.odt"}
	dataNames     = [...]string{"carta-bienvenida.json", "factura-simple.json"}
)

// Names returns a copy of the allow-list for kind.
func (k Kind) Names() []string {
	switch k {
	case KindTemplate:
		names := templateNames
		return names[:]
	case KindData:
		names := dataNames
		return names[:]
	}
	return nil
}

// Allows reports whether name is on the allow-list for kind.
func (k Kind) Allows(name string) bool {
	for _, n := range k.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Key is the storage key of name.
func (k Kind) Key(name string) string {
	switch k {
	case KindTemplate:
		return "templates/" + name
	default:
		return "data/" + name
	}
}

// ContentType is the media type samples of this kind are served with.
func (k Kind) ContentType() string {
	if k == KindTemplate {
		return merge.MediaTypeODT
	}
	return "application/json"
}

// Catalog looks samples up in storage, restricted to the allow-lists.
type Catalog interface {
	// Get returns the sample name of kind. Names outside the allow-list
	// yield ErrNotFound even when storage holds such an object.
	Get(ctx context.Context, kind Kind, name string) (*model.SampleAsset, error)
	// Templates lists the allow-listed templates present in storage.
	Templates(ctx context.Context) []string
	// Data lists the allow-listed data fixtures present and readable in storage.
	Data(ctx context.Context) []model.SampleData
}

type catalog struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewCatalog constructs a Catalog over store.
func NewCatalog(store storage.Storage, logger *zap.Logger) Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &catalog{store: store, logger: logger}
}

func (c *catalog) Get(ctx context.Context, kind Kind, name string) (*model.SampleAsset, error) {
	if !kind.Allows(name) {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
	}
	b, err := c.read(ctx, kind.Key(name))
	if err != nil {
		return nil, err
	}
	return &model.SampleAsset{
		Name:        name,
		Kind:        string(kind),
		ContentType: kind.ContentType(),
		Content:     b,
	}, nil
}

func (c *catalog) Templates(ctx context.Context) []string {
	var present []string
	for _, name := range KindTemplate.Names() {
		if _, err := c.store.Stat(ctx, KindTemplate.Key(name)); err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				c.logger.Warn("stat sample template", zap.String("name", name), zap.Error(err))
			}
			continue
		}
		present = append(present, name)
	}
	return present
}

func (c *catalog) Data(ctx context.Context) []model.SampleData {
	var present []model.SampleData
	for _, name := range KindData.Names() {
		b, err := c.read(ctx, KindData.Key(name))
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				c.logger.Warn("skip unreadable sample data", zap.String("name", name), zap.Error(err))
			}
			continue
		}
		present = append(present, model.SampleData{Name: name, Content: string(b)})
	}
	return present
}

func (c *catalog) read(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read sample %s: %w", key, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, maxSampleSize+1))
	if err != nil {
		return nil, fmt.Errorf("read sample %s: %w", key, err)
	}
	if len(b) > maxSampleSize {
		return nil, fmt.Errorf("read sample %s: exceeds %d bytes", key, maxSampleSize)
	}
	return b, nil
}
