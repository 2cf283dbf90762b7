package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kdninv/nota-api/internal/auth"
	"github.com/kdninv/nota-api/internal/domain/entity"
)

const sessionKey = "session"

// sessionMiddleware verifies the session cookie and stores the decoded
// session on the gin context. Requests without a valid cookie get 401.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "sesi tidak valid, silakan login kembali",
			})
			return
		}

		session, err := s.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "sesi tidak valid, silakan login kembali",
			})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// currentSession returns the session stored by sessionMiddleware.
func currentSession(c *gin.Context) entity.Session {
	v, _ := c.Get(sessionKey)
	session, _ := v.(entity.Session)
	return session
}
