package samples

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"odtplayground/internal/storage"
)

// Sync copies every allow-listed sample found in src to dst and returns the
// number of objects uploaded. Samples missing from src are skipped.
func Sync(ctx context.Context, src storage.Storage, dst storage.ObjectStore, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := 0
	for _, kind := range []Kind{KindTemplate, KindData} {
		for _, name := range kind.Names() {
			key := kind.Key(name)
			if err := copyObject(ctx, src, dst, key, kind.ContentType()); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					logger.Warn("sample missing from source", zap.String("key", key))
					continue
				}
				return n, err
			}
			logger.Info("sample uploaded", zap.String("key", key))
			n++
		}
	}
	return n, nil
}

func copyObject(ctx context.Context, src storage.Storage, dst storage.ObjectStore, key, contentType string) error {
	rc, info, err := src.Get(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	if _, err := dst.Put(ctx, key, rc, storage.PutObjectOptions{Size: info.Size, ContentType: contentType}); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
