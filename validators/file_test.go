package validators

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(name, contentType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}

	return &multipart.FileHeader{
		Filename: name,
		Header:   h,
		Size:     size,
	}
}

func TestFileValidatorRejectsNil(t *testing.T) {
	_, code, err := FileValidator(nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestFileValidatorRejectsOversize(t *testing.T) {
	viper.Set("upload.max_size", int64(50)<<20)

	_, code, err := FileValidator(header("big.bin", "application/octet-stream", 51<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestFileValidatorRejectsLongName(t *testing.T) {
	viper.Set("upload.max_size", int64(50)<<20)

	_, code, err := FileValidator(header(strings.Repeat("n", 300)+".txt", "text/plain", 10))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileNameTooLong)
}

func TestFileValidatorKeepsDeclaredMime(t *testing.T) {
	viper.Set("upload.max_size", int64(50)<<20)

	mime, code, err := FileValidator(header("doc.pdf", "application/pdf", 10))
	require.NoError(t, err)
	assert.Zero(t, code)
	assert.Equal(t, "application/pdf", mime)
}
