package uploadhandler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"omnichat/internal/infrastructure/storage"
	"omnichat/internal/interfaces/httpserver/responses"
	"omnichat/internal/utils/platformerrors"
)

// maxUploadSize caps user image uploads at 20 MB.
const maxUploadSize = 20 * 1024 * 1024

// UploadHandler accepts user image uploads for multimodal chat turns.
type UploadHandler struct {
	blobs *storage.LocalStorage
}

func NewUploadHandler(blobs *storage.LocalStorage) *UploadHandler {
	return &UploadHandler{blobs: blobs}
}

// Upload handles POST /v1/uploads with a multipart "file" field and returns
// the public blob path.
func (h *UploadHandler) Upload(reqCtx *gin.Context) {
	fileHeader, err := reqCtx.FormFile("file")
	if err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "multipart 'file' field is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "file exceeds the 20MB upload limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg":
	default:
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "only png and jpeg uploads are supported")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "failed to read upload")
		return
	}

	imagePath, err := h.blobs.SaveImage(data, ext)
	if err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "failed to store upload")
		return
	}

	reqCtx.JSON(http.StatusCreated, gin.H{"image_path": imagePath})
}
