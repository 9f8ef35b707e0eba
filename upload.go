package extcore

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// maxMultipartMemory is the part of a multipart body kept in memory; the
// rest spills to temporary files.
const maxMultipartMemory = 32 << 20

// FileUpload holds a parsed file from a multipart form upload.
type FileUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Header      *multipart.FileHeader
	file        multipart.File
}

// Open returns a reader for the uploaded file contents.
func (f *FileUpload) Open() (io.ReadCloser, error) {
	if f.file != nil {
		return f.file, nil
	}
	if f.Header == nil {
		return nil, errors.New("no file header")
	}
	file, err := f.Header.Open()
	if err != nil {
		return nil, err
	}
	f.file = file
	return file, nil
}

func newFileUpload(h *multipart.FileHeader) FileUpload {
	return FileUpload{
		Filename:    h.Filename,
		Size:        h.Size,
		ContentType: h.Header.Get("Content-Type"),
		Header:      h,
	}
}

// parseMultipart parses a multipart body once; repeated calls are no-ops.
func parseMultipart(r *http.Request) error {
	if r.MultipartForm != nil {
		return nil
	}
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return fmt.Errorf("%w: %w", ErrBindForm, err)
	}
	return nil
}

// formFiles returns the uploads for a multipart field, or nil.
func formFiles(r *http.Request, name string) ([]FileUpload, error) {
	if err := parseMultipart(r); err != nil {
		return nil, err
	}
	headers := r.MultipartForm.File[name]
	if len(headers) == 0 {
		return nil, nil
	}
	uploads := make([]FileUpload, 0, len(headers))
	for _, h := range headers {
		uploads = append(uploads, newFileUpload(h))
	}
	return uploads, nil
}
