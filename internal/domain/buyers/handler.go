package buyers

import (
	"errors"
	"net/http"
	"strconv"

	"tooma/internal/middleware"
	"tooma/internal/pkg/response"
	"tooma/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register creates a buyer record for the upload named in the path.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationError(c, http.StatusBadRequest, "Validation failed.", fields)
		return
	}

	b, err := h.service.RegisterBuyer(c.Request.Context(), c.Param("uniqueId"), req.toInput())
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, RegisterResponse{
		ID:            b.ID,
		PaymentLink:   b.PaymentLink,
		OrderStatus:   b.OrderStatus,
		PaymentStatus: b.PaymentStatus,
	})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("buyerId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Buyer information not found.")
		return
	}
	b, err := h.service.GetBuyer(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, b)
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationError(c, http.StatusBadRequest, "Validation failed.", fields)
		return
	}

	res, err := h.service.VerifyBuyer(c.Request.Context(), c.Param("uniqueId"), req.BuyerEmail)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// ListForFile serves /file-buyers/:uniqueId to the upload's owner.
func (h *Handler) ListForFile(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	out, err := h.service.ListForFile(c.Request.Context(), userID, c.Param("uniqueId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}

func (h *Handler) ListMine(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	out, err := h.service.ListForOwner(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}

// PaymentCallback is the gateway's redirect target after checkout.
func (h *Handler) PaymentCallback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("buyerId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Buyer information not found.")
		return
	}

	target, err := h.service.HandlePaymentCallback(c.Request.Context(), id, c.Query("reference"), c.Query("trxref"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFileNotFound):
		response.Error(c, http.StatusNotFound, "File upload not found.")
	case errors.Is(err, ErrBuyerNotFound):
		response.Error(c, http.StatusNotFound, "Buyer information not found.")
	case errors.Is(err, ErrEmailNotFound):
		response.Error(c, http.StatusNotFound, "Buyer email not found.")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, ErrMissingReference):
		response.Error(c, http.StatusBadRequest, "Missing 'reference' or 'trxref' in callback request.")
	case errors.Is(err, ErrPaymentFailed):
		response.Error(c, http.StatusBadRequest, "Payment failed")
	case errors.Is(err, ErrPaymentInitiation):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Failed to initiate payment.")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "Internal server error occurred.")
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
