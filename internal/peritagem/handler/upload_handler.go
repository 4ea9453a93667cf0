package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/trust-tecnologia/peritagem-backend/internal/peritagem/service"
)

// UploadHandler receives already-compressed inspection photos and stores
// them in object storage.
type UploadHandler struct {
	svc *service.PhotoService
}

func NewUploadHandler(svc *service.PhotoService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// UploadedPhoto is one stored photo reference.
type UploadedPhoto struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Upload POST /api/v1/upload/photos (multipart, field "files" or "file")
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "não foi possível ler o upload: "+err.Error())
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		BadRequest(c, "nenhum arquivo enviado")
		return
	}

	var uploaded []UploadedPhoto
	for _, fileHeader := range files {
		src, err := fileHeader.Open()
		if err != nil {
			InternalError(c, "falha ao ler arquivo: "+err.Error())
			return
		}

		url, err := h.svc.Upload(c.Request.Context(), src, fileHeader.Filename,
			fileHeader.Size, fileHeader.Header.Get("Content-Type"))
		src.Close()
		if err != nil {
			if errors.Is(err, service.ErrStorageIndisponivel) {
				BadRequest(c, err.Error())
				return
			}
			InternalError(c, "falha ao armazenar foto: "+err.Error())
			return
		}

		uploaded = append(uploaded, UploadedPhoto{
			URL:      url,
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
		})
	}

	Success(c, uploaded)
}
