package validators

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/cartline/cartline-backend/pkg/errors"
)

// multipart fields beyond file parts are kept in memory up to this size
const maxFormMemory = 1 << 20

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Upload is a file part whose type was sniffed from its content.
type Upload struct {
	Data        []byte
	ContentType string
	Extension   string
}

// IsMultipart reports whether the request carries a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// ParseMultipartForm bounds the whole body by maxBytes plus form overhead.
func ParseMultipartForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if !IsMultipart(r) {
		return pkgerrors.New(pkgerrors.CodeValidation, "multipart/form-data body required")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request body too large")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormValue returns the trimmed form field and whether it was sent at all.
func FormValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}

// FormImage reads the file part field and checks it is an image no larger than maxBytes.
// It returns nil when the part is absent.
func FormImage(r *http.Request, field string, maxBytes int64) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file").WithDetails(map[string]string{field: "could not be read"})
	}
	defer file.Close()

	if header.Size > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: "file too large"})
	}
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file").WithDetails(map[string]string{field: "could not be read"})
	}
	if int64(len(data)) > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: "file too large"})
	}

	detected := mimetype.Detect(data)
	contentType := strings.SplitN(detected.String(), ";", 2)[0]
	if _, ok := allowedImageTypes[contentType]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: "must be a jpeg, png, gif or webp image"})
	}
	return &Upload{Data: data, ContentType: contentType, Extension: detected.Extension()}, nil
}
