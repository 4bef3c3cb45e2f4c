package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-ordering-app/utils"
)

const (
	CtxUserID   = "user_id"
	CtxUserName = "user_name"
	CtxRole     = "role"
	CtxToken    = "token"
)

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	// websocket dari browser tidak bisa kirim header
	return c.Query("token")
}

// AuthMiddleware memvalidasi JWT dari header Authorization atau query ?token=
// dan menolak token yang sudah logout.
func AuthMiddleware(blacklist *utils.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization token missing"))
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims == nil || claims.UserID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			c.Abort()
			return
		}

		if blacklist != nil && blacklist.Contains(c.Request.Context(), tokenString) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token has been revoked"))
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserName, claims.Name)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxToken, tokenString)
		c.Next()
	}
}

// Actor -> nama user yang login, dipakai sebagai changed_by
func Actor(c *gin.Context) string {
	if name := c.GetString(CtxUserName); name != "" {
		return name
	}
	return c.GetString(CtxRole)
}
