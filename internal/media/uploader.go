package media

import (
	"context"
	"errors"
	"io"
	"path"

	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// File is a single multipart part ready for upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type objectStore interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, object string) error
	ObjectFromURL(raw string) (string, bool)
}

// Uploader stores request files in object storage and returns their public URLs.
type Uploader struct {
	store   objectStore
	logg    *logger.Logger
	newName func() string
}

func NewUploader(store objectStore, logg *logger.Logger) (*Uploader, error) {
	if store == nil {
		return nil, errors.New("object store required")
	}
	return &Uploader{store: store, logg: logg, newName: uuid.NewString}, nil
}

// UploadAll uploads files in order. Either every file is stored or none is:
// on the first failure the objects already written are removed.
func (u *Uploader) UploadAll(ctx context.Context, folder Folder, files []File) ([]string, error) {
	for _, f := range files {
		if err := validateContentType(folder, f.ContentType); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported file type").
				WithDetails(map[string]any{"file": f.Name})
		}
	}

	urls := make([]string, 0, len(files))
	objects := make([]string, 0, len(files))
	for _, f := range files {
		object := path.Join(string(folder), u.newName()+extensionFor(f.Name, f.ContentType))
		url, err := u.store.Upload(ctx, object, normalizeContentType(f.ContentType), f.Body)
		if err != nil {
			if cleanupErr := u.deleteObjects(ctx, objects); cleanupErr != nil && u.logg != nil {
				u.logg.Error(u.logg.WithField(ctx, "objects", objects), "media cleanup failed", cleanupErr)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload media")
		}
		urls = append(urls, url)
		objects = append(objects, object)
	}
	return urls, nil
}

// Upload stores one file.
func (u *Uploader) Upload(ctx context.Context, folder Folder, file File) (string, error) {
	urls, err := u.UploadAll(ctx, folder, []File{file})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

// Remove deletes previously uploaded objects by public URL. URLs outside the
// bucket are ignored.
func (u *Uploader) Remove(ctx context.Context, urls []string) error {
	objects := make([]string, 0, len(urls))
	for _, raw := range urls {
		if object, ok := u.store.ObjectFromURL(raw); ok {
			objects = append(objects, object)
		}
	}
	return u.deleteObjects(ctx, objects)
}

// RemoveQuietly is Remove for paths where the database change already succeeded.
func (u *Uploader) RemoveQuietly(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := u.Remove(ctx, urls); err != nil && u.logg != nil {
		u.logg.Warn(u.logg.WithField(ctx, "error", err.Error()), "media removal failed")
	}
}

func (u *Uploader) deleteObjects(ctx context.Context, objects []string) error {
	var errs error
	for _, object := range objects {
		errs = multierr.Append(errs, u.store.Delete(ctx, object))
	}
	return errs
}
