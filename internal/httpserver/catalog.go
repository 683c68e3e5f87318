package httpserver

import (
	"net/http"
	"strconv"

	"camisfut-storefront/internal/catalog"
	"camisfut-storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

type productListResponse struct {
	Count    int              `json:"count"`
	Products []domain.Product `json:"productos"`
}

func listResponse(products []domain.Product) productListResponse {
	if products == nil {
		products = []domain.Product{}
	}
	return productListResponse{Count: len(products), Products: products}
}

func catalogHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.Catalog(c.Request.Context(), catalog.ParseFilter(c.Request.URL.Query()))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, listResponse(list))
	}
}

func featuredHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.Featured(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, listResponse(list))
	}
}

func searchHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := c.Query("q")
		if term == "" {
			badRequest(c, "q is required")
			return
		}
		list, err := products.Search(c.Request.Context(), term)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, listResponse(list))
	}
}

func categoryHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.ByCategory(c.Request.Context(), c.Param("category"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, listResponse(list))
	}
}

func collectionHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, ok, err := products.Collection(c.Request.Context(), c.Param("name"))
		if err != nil {
			writeError(c, err)
			return
		}
		if !ok {
			c.Header("X-Collection-Unknown", "true")
		}
		c.JSON(http.StatusOK, listResponse(list))
	}
}

func productHandler(products productService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		p, err := products.Product(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// intParam reads a positive integer path parameter, answering 400 when it
// is not one.
func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
