package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// fsStorage serves objects from an fs.FS, typically the embedded sample assets.
type fsStorage struct {
	fsys fs.FS
}

// NewFS returns a Storage reading keys as paths inside fsys.
func NewFS(fsys fs.FS) Storage {
	return &fsStorage{fsys: fsys}
}

func (s *fsStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}
	if !fs.ValidPath(key) {
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	f, err := s.fsys.Open(key)
	if err != nil {
		return nil, ObjectInfo{}, mapFSError(key, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, mapFSError(key, err)
	}
	if st.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return f, infoFromFS(key, st), nil
}

func (s *fsStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	if !fs.ValidPath(key) {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	st, err := fs.Stat(s.fsys, key)
	if err != nil {
		return ObjectInfo{}, mapFSError(key, err)
	}
	if st.IsDir() {
		return ObjectInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return infoFromFS(key, st), nil
}

func infoFromFS(key string, st fs.FileInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  ContentType(key),
		LastModified: st.ModTime(),
	}
}

func mapFSError(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return fmt.Errorf("read %s: %w", key, err)
}
