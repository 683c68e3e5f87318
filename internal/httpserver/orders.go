package httpserver

import (
	"net/http"

	"camisfut-storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

func listOrdersHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFrom(c)
		if !sess.IsLoggedIn() {
			writeError(c, domain.ErrUnauthenticated)
			return
		}
		list, err := orders.List(c.Request.Context(), sess)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(list), "pedidos": list})
	}
}

func hideOrderHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		if err := orders.Hide(c.Request.Context(), sessionFrom(c), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func restoreHiddenHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := orders.RestoreHidden(c.Request.Context(), sessionFrom(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
