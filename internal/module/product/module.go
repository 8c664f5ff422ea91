package product

import "github.com/gin-gonic/gin"

// ProductModule implements the app.Module interface for the catalog.
type ProductModule struct {
	handler *ProductHandler
}

// NewModule creates a new ProductModule with the given handler.
// Panics if h is nil.
func NewModule(h *ProductHandler) *ProductModule {
	if h == nil {
		panic("product.NewModule: handler must not be nil")
	}
	return &ProductModule{handler: h}
}

// RegisterRoutes registers product API routes.
func (m *ProductModule) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/products", m.handler.List)
	api.POST("/products", m.handler.Create)
	api.DELETE("/products/:id", m.handler.Delete)
}
