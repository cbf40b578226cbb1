package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/Shashankphatkure/equico-app/internal/media"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
)

// multipartMemory is how much of the body is buffered before spilling to disk.
const multipartMemory = 8 << 20

// MultipartForm is a parsed multipart body whose files stay open until Close.
type MultipartForm struct {
	form   *multipart.Form
	opened []multipart.File
}

// ParseMultipart caps the body at maxBytes and parses it as multipart/form-data.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) (*MultipartForm, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body too large").WithDetails(map[string]any{"limitBytes": tooLarge.Limit})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}
	return &MultipartForm{form: r.MultipartForm}, nil
}

// Decode copies `form` tagged fields into dest and validates it.
// Supported field kinds are string, *string and bool.
func (f *MultipartForm) Decode(dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return pkgerrors.New(pkgerrors.CodeInternal, "form destination must be a struct pointer")
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := field.Tag.Get("form")
		if key == "" || key == "-" {
			continue
		}
		raw, present := f.lookup(key)
		if !present {
			continue
		}
		target := v.Field(i)
		switch {
		case field.Type.Kind() == reflect.String:
			target.SetString(strings.TrimSpace(raw))
		case field.Type.Kind() == reflect.Pointer && field.Type.Elem().Kind() == reflect.String:
			value := strings.TrimSpace(raw)
			target.Set(reflect.ValueOf(&value))
		case field.Type.Kind() == reflect.Bool:
			parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{key: "must be a boolean"})
			}
			target.SetBool(parsed)
		}
	}
	return ValidateStruct(dest)
}

// Value returns the trimmed first value for key.
func (f *MultipartForm) Value(key string) string {
	raw, _ := f.lookup(key)
	return strings.TrimSpace(raw)
}

// File opens the first file uploaded under key, or returns nil when none was sent.
func (f *MultipartForm) File(key string) (*media.File, error) {
	files, err := f.Files(key)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &files[0], nil
}

// Files opens every file uploaded under key, in submission order.
func (f *MultipartForm) Files(key string) ([]media.File, error) {
	if f.form == nil {
		return nil, nil
	}
	headers := f.form.File[key]
	out := make([]media.File, 0, len(headers))
	for _, header := range headers {
		if header == nil || header.Size == 0 {
			continue
		}
		body, err := header.Open()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file")
		}
		f.opened = append(f.opened, body)
		out = append(out, media.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        body,
		})
	}
	return out, nil
}

// Close releases opened files and any temporary storage.
func (f *MultipartForm) Close() error {
	var err error
	for _, body := range f.opened {
		err = multierr.Append(err, body.Close())
	}
	f.opened = nil
	if f.form != nil {
		err = multierr.Append(err, f.form.RemoveAll())
	}
	return err
}

func (f *MultipartForm) lookup(key string) (string, bool) {
	if f.form == nil {
		return "", false
	}
	values, ok := f.form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
