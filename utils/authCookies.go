package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

func SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	setCookie(c, accessCookie, accessToken, AccessTokenExpiry)
	setCookie(c, refreshCookie, refreshToken, RefreshTokenExpiry)
}

// RefreshTokenFromCookie returns the refresh token cookie, if any.
func RefreshTokenFromCookie(c *gin.Context) string {
	token, err := c.Cookie(refreshCookie)
	if err != nil {
		return ""
	}
	return token
}

func ClearAuthCookies(c *gin.Context) {
	setCookie(c, accessCookie, "", -time.Second)
	setCookie(c, refreshCookie, "", -time.Second)
}

func setCookie(c *gin.Context, name, value string, expiry time.Duration) {
	secure := gin.Mode() != gin.DebugMode
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := int(expiry.Seconds())
	if expiry < 0 {
		maxAge = -1
	}
	c.SetCookie(name, value, maxAge, "/", "", secure, true)
}
