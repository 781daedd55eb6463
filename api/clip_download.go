package api

import (
	"errors"
	"fmt"
	"net/http"

	"clipsync/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) ClipDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	id := c.Param("id")
	filename := c.Param("filename")

	blob, err := a.Clipboards.GetFile(c.Request.Context(), id, filename)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch file", zap.String("id", id), zap.String("filename", filename), zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", blob.OriginalName))
	c.Data(http.StatusOK, blob.MimeType, blob.Data)
}
