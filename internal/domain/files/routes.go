package files

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes mounts the recipient-facing endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/files/download/:uniqueId", h.DownloadRedirect)
	rg.GET("/get-presigned-url/:uniqueId", h.GetPresignedURL)
}

// RegisterRoutes mounts the owner endpoints; rg must require JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/files", h.Create)
	rg.GET("/files", h.ListMine)
	rg.GET("/files/:uniqueId", h.Get)
	rg.PATCH("/files/:uniqueId", h.Update)
	rg.GET("/user-files/:userId", h.ListForUser)
}
