package files

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tooma/internal/domain/payment"
	"tooma/internal/middleware"
	"tooma/internal/pkg/response"
	"tooma/internal/pkg/storage"
	"tooma/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is slack on top of the upload limit for form fields.
const multipartOverhead = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles the multipart upload: file, optional banner, title,
// message and optional payment_amount.
func (h *Handler) Create(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	if limit := h.service.cfg.MaxUploadSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*limit+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		response.Error(c, http.StatusBadRequest, "File name is missing or file is not present.")
		return
	}
	banner, _ := c.FormFile("banner")

	in := CreateInput{
		OwnerID:    userID,
		OwnerEmail: c.GetString("email"),
		Title:      c.PostForm("title"),
		Message:    c.PostForm("message"),
		File:       fileHeader,
		Banner:     banner,
	}
	if v, ok := c.GetPostForm("payment_amount"); ok && strings.TrimSpace(v) != "" {
		in.PaymentAmount = &v
	}

	f, err := h.service.CreateUpload(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, newCreateResponse(f))
}

// ListMine returns the caller's uploads.
func (h *Handler) ListMine(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	out, err := h.service.ListForUser(c.Request.Context(), userID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}

// ListForUser serves /user-files/:userId for the matching caller only.
func (h *Handler) ListForUser(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	target, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid user id.")
		return
	}
	out, err := h.service.ListForUser(c.Request.Context(), userID, target)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}

func (h *Handler) Get(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	f, err := h.service.Get(c.Request.Context(), userID, c.Param("uniqueId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, f)
}

func (h *Handler) Update(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationError(c, http.StatusBadRequest, "Validation failed.", fields)
		return
	}

	f, err := h.service.Update(c.Request.Context(), userID, c.Param("uniqueId"), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, f)
}

// DownloadRedirect sends recipients of a metadata link to the shared page.
func (h *Handler) DownloadRedirect(c *gin.Context) {
	target, err := h.service.DownloadRedirect(c.Request.Context(), c.Param("uniqueId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// GetPresignedURL returns the file details plus a freshly signed URL.
func (h *Handler) GetPresignedURL(c *gin.Context) {
	info, err := h.service.GetDownloadInfo(c.Request.Context(), c.Param("uniqueId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFileNotFound):
		response.Error(c, http.StatusNotFound, "File upload not found.")
	case errors.Is(err, ErrExpired):
		response.Error(c, http.StatusNotFound, "The download link has expired.")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, ErrMissingFile):
		response.Error(c, http.StatusBadRequest, "File name is missing or file is not present.")
	case errors.Is(err, ErrTitleRequired):
		response.Error(c, http.StatusBadRequest, "Title is required.")
	case errors.Is(err, payment.ErrInvalidAmount):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrPaymentInitiation):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Failed to initiate payment.")
	case errors.Is(err, ErrLinkGeneration):
		response.Error(c, http.StatusBadRequest, storageMessage(err))
	case errors.Is(err, storage.ErrObjectNotFound),
		errors.Is(err, storage.ErrInvalidParams),
		errors.Is(err, storage.ErrMissingCredentials):
		if storage.StatusCode(err) >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		response.Error(c, storage.StatusCode(err), storageMessage(err))
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Internal server error.")
	}
}

func storageMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		return "File key does not exist in S3."
	case errors.Is(err, storage.ErrMissingCredentials):
		return "AWS credentials not available."
	case errors.Is(err, storage.ErrInvalidParams):
		return "Invalid storage parameters."
	default:
		return "Failed to generate download link."
	}
}

func mustUserID(c *gin.Context) int64 {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return 0
	}
	return userID
}
