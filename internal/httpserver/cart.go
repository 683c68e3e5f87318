package httpserver

import (
	"io"
	"net/http"

	"camisfut-storefront/internal/domain"
	cartsvc "camisfut-storefront/internal/service/cart"
	"github.com/gin-gonic/gin"
)

type updateQuantityRequest struct {
	Quantity *int `json:"cantidad" binding:"required"`
}

type checkoutResponse struct {
	Order   domain.Order `json:"pedido"`
	Message string       `json:"message"`
}

// withEngine resolves the request's cart engine or answers the error.
func withEngine(carts cartService, fn func(c *gin.Context, e *cartsvc.Engine)) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := carts.Engine(c.Request.Context(), cartKeyFrom(c))
		if err != nil {
			writeError(c, err)
			return
		}
		fn(c, e)
	}
}

func getCartHandler(carts cartService) gin.HandlerFunc {
	return withEngine(carts, func(c *gin.Context, e *cartsvc.Engine) {
		c.JSON(http.StatusOK, e.Snapshot())
	})
}

func clearCartHandler(carts cartService) gin.HandlerFunc {
	return withEngine(carts, func(c *gin.Context, e *cartsvc.Engine) {
		e.Clear(c.Request.Context())
		c.JSON(http.StatusOK, e.Snapshot())
	})
}

func addCartItemHandler(carts cartService) gin.HandlerFunc {
	return withEngine(carts, func(c *gin.Context, e *cartsvc.Engine) {
		var req cartsvc.AddInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid cart item")
			return
		}
		if _, err := e.Add(c.Request.Context(), req); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, e.Snapshot())
	})
}

func updateCartItemHandler(carts cartService) gin.HandlerFunc {
	return withEngine(carts, func(c *gin.Context, e *cartsvc.Engine) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "cantidad is required")
			return
		}
		if !e.SetQuantity(c.Request.Context(), id, *req.Quantity) {
			writeError(c, domain.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, e.Snapshot())
	})
}

func removeCartItemHandler(carts cartService) gin.HandlerFunc {
	return withEngine(carts, func(c *gin.Context, e *cartsvc.Engine) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		if !e.Remove(c.Request.Context(), id) {
			writeError(c, domain.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, e.Snapshot())
	})
}

// cartEventsHandler streams cart snapshots as server-sent events, starting
// with the current state.
func cartEventsHandler(carts cartService) gin.HandlerFunc {
	return withEngine(carts, func(c *gin.Context, e *cartsvc.Engine) {
		ch, cancel := e.Subscribe()
		defer cancel()

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		c.SSEvent("cart", e.Snapshot())
		c.Writer.Flush()

		ctx := c.Request.Context()
		c.Stream(func(_ io.Writer) bool {
			select {
			case snap, ok := <-ch:
				if !ok {
					return false
				}
				c.SSEvent("cart", snap)
				return true
			case <-ctx.Done():
				return false
			}
		})
	})
}

func checkoutHandler(carts cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := carts.Checkout(c.Request.Context(), sessionFrom(c), cartKeyFrom(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, checkoutResponse{Order: order, Message: "Pedido realizado"})
	}
}
