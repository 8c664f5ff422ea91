package product

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/catalog/internal/domain"
	"github.com/simp-lee/catalog/internal/pkg"
)

// ProductHandler handles REST API requests for the product resource.
type ProductHandler struct {
	svc domain.ProductService
}

// NewProductHandler creates a new ProductHandler with the given service.
func NewProductHandler(svc domain.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List handles GET /api/products. Malformed query parameters fall back to
// defaults; only a store failure produces an error status.
func (h *ProductHandler) List(c *gin.Context) {
	q := pkg.ParseProductQuery(c)

	page, err := h.svc.ListProducts(c.Request.Context(), q)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, page)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), req.Name, req.Description, *req.Price)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, product)
}

// Delete handles DELETE /api/products/:id. An id that cannot name a product
// is reported as not found.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		pkg.Error(c, domain.ErrProductNotFound)
		return
	}

	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Message(c, http.StatusOK, "Product deleted")
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
