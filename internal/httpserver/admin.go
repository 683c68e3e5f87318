package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	adminsvc "camisfut-storefront/internal/service/admin"
	"github.com/gin-gonic/gin"
)

const maxImportBytes = 10 << 20

type adminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type overlayEntryResponse struct {
	ProductID int             `json:"id"`
	Deleted   bool            `json:"eliminado"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Doc       json.RawMessage `json:"documento"`
}

func adminLoginHandler(auth adminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "email and password are required")
			return
		}
		token, exp, err := auth.Login(req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, adminLoginResponse{Token: token, ExpiresAt: exp})
	}
}

func adminLogoutHandler(auth adminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Logout(c.GetString(adminTokenCtxKey)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func adminSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(adminClaimsCtxKey)
		claims, _ := v.(*adminsvc.Claims)
		resp := gin.H{"isLoggedIn": claims != nil}
		if claims != nil {
			resp["email"] = claims.Email
			if claims.ExpiresAt != nil {
				resp["expiresAt"] = claims.ExpiresAt.Time
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func adminListHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := admin.Products(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, listResponse(list))
	}
}

func adminGetHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		p, err := admin.Product(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func readPatch(c *gin.Context) (json.RawMessage, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		badRequest(c, "unreadable body")
		return nil, false
	}
	if len(body) == 0 {
		return nil, true
	}
	if !json.Valid(body) {
		badRequest(c, "body must be a JSON object")
		return nil, false
	}
	return body, true
}

func adminCreateHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		patch, ok := readPatch(c)
		if !ok {
			return
		}
		p, err := admin.Create(c.Request.Context(), patch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func adminUpdateHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		patch, ok := readPatch(c)
		if !ok {
			return
		}
		if patch == nil {
			patch = json.RawMessage(`{}`)
		}
		p, err := admin.Update(c.Request.Context(), id, patch)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func adminDeleteHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		if err := admin.Delete(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func adminRestoreHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := intParam(c, "id")
		if !ok {
			return
		}
		restored, err := admin.Restore(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"restored": restored})
	}
}

func adminOverlayHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := admin.Modifications(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]overlayEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, overlayEntryResponse{ProductID: e.ProductID, Deleted: e.Deleted, UpdatedAt: e.UpdatedAt, Doc: e.Doc})
		}
		c.JSON(http.StatusOK, out)
	}
}

func adminExportHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := admin.Export(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="productos-modificados.json"`)
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	}
}

func adminImportHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
		if err != nil {
			badRequest(c, "unreadable body")
			return
		}
		n, err := admin.Import(c.Request.Context(), data)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"imported": n})
	}
}

func adminClearHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := admin.Clear(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func adminSyncHandler(admin adminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := admin.Sync(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"synced": n})
	}
}
