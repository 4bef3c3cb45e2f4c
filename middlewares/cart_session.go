package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartCookie     = "cart_session"
	CtxCartSession = "cart_session"
	defaultCartTTL = 30 * time.Minute
)

// CartSession memastikan setiap pengunjung punya cookie session untuk cart.
// Cookie diterbitkan ulang di setiap request dengan umur ttl, mengikuti TTL cart di redis.
func CartSession(ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	maxAge := int(ttl / time.Second)

	return func(c *gin.Context) {
		sid, err := c.Cookie(CartCookie)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartCookie, sid, maxAge, "/", "", false, true)
		c.Set(CtxCartSession, sid)
		c.Next()
	}
}

func CartSessionID(c *gin.Context) string {
	return c.GetString(CtxCartSession)
}
