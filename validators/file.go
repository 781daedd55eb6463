package validators

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds the upload limit")
	ErrFileNameTooLong = errors.New("file name is too long")
	ErrNoFile          = errors.New("no file provided")
)

const maxFileNameSize = 255

// FileValidator checks an uploaded file against the size and name limits
// and resolves its MIME type, sniffing the content when the client didn't
// send a usable one. Returns the HTTP status to respond with on failure.
func FileValidator(fh *multipart.FileHeader) (string, int, error) {
	if fh == nil {
		return "", http.StatusBadRequest, ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return "", http.StatusBadRequest, ErrFileNameTooLong
	}

	if fh.Size > viper.GetInt64("upload.max_size") {
		return "", http.StatusRequestEntityTooLarge, ErrFileTooLarge
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		f, err := fh.Open()
		if err != nil {
			return "", http.StatusInternalServerError, err
		}
		defer f.Close()

		if m, err := mimetype.DetectReader(f); err == nil {
			mimeType = m.String()
		} else {
			mimeType = "application/octet-stream"
		}
	}

	return mimeType, 0, nil
}
