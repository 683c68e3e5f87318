package httpserver

import (
	"net/http"

	"camisfut-storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

type reviewRequest struct {
	ProductID int    `json:"idProducto"`
	Rating    int    `json:"puntuacion" binding:"required"`
	Comment   string `json:"comentario"`
}

func listReviewsHandler(reviews reviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := reviews.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if list == nil {
			list = []domain.Review{}
		}
		c.JSON(http.StatusOK, list)
	}
}

func createReviewHandler(reviews reviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
			badRequest(c, "idProducto and puntuacion are required")
			return
		}
		r, err := reviews.CreateForProduct(c.Request.Context(), sessionFrom(c), req.ProductID, req.Rating, req.Comment)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

func createGeneralReviewHandler(reviews reviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "puntuacion is required")
			return
		}
		r, err := reviews.CreateGeneral(c.Request.Context(), sessionFrom(c), req.Rating, req.Comment)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

func hasGeneralOpinionHandler(reviews reviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"hasOpinion": reviews.HasGeneralOpinion(c.Request.Context(), sessionFrom(c))})
	}
}

func updateReviewHandler(reviews reviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "puntuacion is required")
			return
		}
		r, err := reviews.Update(c.Request.Context(), sessionFrom(c), id, req.Rating, req.Comment)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func deleteReviewHandler(reviews reviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		if err := reviews.Delete(c.Request.Context(), sessionFrom(c), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
