package buyers

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes mounts the buyer-facing endpoints and the gateway
// callback.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/files/create-buyer-info/:uniqueId", h.Register)
	rg.POST("/files/update-buyer-info/:uniqueId", h.Register)
	rg.POST("/files/:uniqueId/buyers", h.Register)
	rg.POST("/files/verify-buyer-email/:uniqueId", h.VerifyEmail)
	rg.GET("/buyers/:buyerId", h.Get)
	rg.GET("/payment-callback/:buyerId", h.PaymentCallback)
}

// RegisterRoutes mounts the owner endpoints; rg must require JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/buyers", h.ListMine)
	rg.GET("/file-buyers/:uniqueId", h.ListForFile)
}
