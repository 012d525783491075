package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-issue-api/internal/service"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
	"github.com/noah-isme/campus-issue-api/pkg/response"
)

// AttachmentHandler handles file upload and download for issues.
type AttachmentHandler struct {
	service *service.AttachmentService
}

// NewAttachmentHandler constructs the attachment handler.
func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: svc}
}

// Upload godoc
// @Summary Attach a file to an issue
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Issue ID"
// @Param file formData file true "File to attach"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id}/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field is required"))
		return
	}

	attachment, err := h.service.Upload(c.Request.Context(), claims, c.Param("id"), header)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, attachment)
}

// Download godoc
// @Summary Download an attachment
// @Tags Attachments
// @Produce octet-stream
// @Param id path string true "Attachment ID"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attachments/{id} [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	attachment, file, err := h.service.Download(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	c.Header("Content-Type", attachment.MimeType)
	http.ServeContent(c.Writer, c.Request, attachment.Filename, attachment.CreatedAt, file)
}
