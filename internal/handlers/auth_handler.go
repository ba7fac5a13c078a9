package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/annie-elequin/timetracking/config"
	"github.com/annie-elequin/timetracking/internal/auth"
	"github.com/annie-elequin/timetracking/internal/calendar"
	"github.com/annie-elequin/timetracking/models"
)

const stateCookie = "oauth_state"

// CurrentSession returns the session placed in the context by the auth
// middleware, or nil on routes outside the protected group.
func CurrentSession(c *gin.Context) *auth.Session {
	v, ok := c.Get("session")
	if !ok {
		return nil
	}
	sess, _ := v.(*auth.Session)
	return sess
}

func sameSiteMode() http.SameSite {
	// Cross-site cookies are needed in production where the frontend lives
	// on another origin.
	if config.IsProduction {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(sameSiteMode())
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", config.IsProduction, true)
}

// GoogleLoginHandler перенаправляет на экран согласия Google, предварительно
// выставив одноразовую state-cookie против CSRF.
func GoogleLoginHandler(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(sameSiteMode())
	c.SetCookie(stateCookie, state, int((10 * time.Minute).Seconds()), "/", "", config.IsProduction, true)

	// prompt=consent, чтобы Google гарантированно вернул refresh token.
	url := config.GoogleOAuth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	c.Redirect(http.StatusFound, url)
}

// GoogleCallbackHandler обменивает authorization code на учетные данные,
// создает (или обновляет) пользователя и открывает сессию.
func GoogleCallbackHandler(c *gin.Context) {
	state := c.Query("state")
	storedState, err := c.Cookie(stateCookie)
	if state == "" || err != nil || state != storedState {
		slog.Error("OAuth state mismatch", "received_state", state)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authentication failed", "details": "Invalid state parameter"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authentication failed", "details": "Invalid authorization code"})
		return
	}

	ctx := c.Request.Context()
	token, err := config.GoogleOAuth.Exchange(ctx, code)
	if err != nil {
		slog.Error("Error getting tokens from Google", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed", "details": "Failed to get tokens from Google"})
		return
	}

	info, err := calendar.UserInfo(ctx, config.GoogleOAuth.TokenSource(ctx, token))
	if err != nil {
		slog.Error("Error getting user info from Google", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed", "details": "Failed to get user info from Google"})
		return
	}
	if info.Id == "" || info.Email == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed", "details": "Missing user information from Google"})
		return
	}

	var user models.User
	err = config.DB.Where("google_id = ?", info.Id).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Error("Database error during login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}
	user.GoogleID = info.Id
	user.Email = info.Email
	user.Name = info.Name

	if token.RefreshToken != "" {
		if err := user.SetRefreshToken(token.RefreshToken); err != nil {
			slog.Error("Failed to encrypt refresh token", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
			return
		}
	} else if user.EncryptedRefreshToken == "" {
		slog.Error("No refresh token in Google response", "email", info.Email)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed", "details": "No refresh token received"})
		return
	}

	if err := config.DB.Save(&user).Error; err != nil {
		slog.Error("Failed to save user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	sessions := auth.NewSessionStore(config.RDB)
	sessionID, err := sessions.Create(ctx, &auth.Session{UserID: user.ID, Email: user.Email, Token: token})
	if err != nil {
		slog.Error("Failed to create session", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	signed, err := auth.SignSessionToken(sessionID, user.ID, config.JwtKey)
	if err != nil {
		slog.Error("Failed to sign session token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authentication failed"})
		return
	}

	c.SetSameSite(sameSiteMode())
	c.SetCookie(auth.SessionCookie, signed, int(auth.SessionTTL.Seconds()), "/", "", config.IsProduction, true)
	c.SetCookie(stateCookie, "", -1, "/", "", config.IsProduction, true)

	slog.Info("User logged in", "user_id", user.ID, "email", user.Email)
	c.Redirect(http.StatusFound, config.FrontendURL)
}

// AuthStatusHandler - публичный маршрут: вместо 401 отвечает
// {isAuthenticated: false}.
func AuthStatusHandler(c *gin.Context) {
	tokenStr, err := c.Cookie(auth.SessionCookie)
	if err != nil || tokenStr == "" {
		c.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}

	sessionID, err := auth.ParseSessionToken(tokenStr, config.JwtKey)
	if err != nil {
		clearSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}

	sess, err := auth.NewSessionStore(config.RDB).Get(c.Request.Context(), sessionID)
	if err != nil {
		clearSessionCookie(c)
		c.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isAuthenticated": true, "email": sess.Email})
}

// RefreshHandler выпускает новый access token из сохраненного refresh token
// и перезаписывает сессию.
func RefreshHandler(c *gin.Context) {
	sess := CurrentSession(c)
	sessionID := c.GetString("session_id")

	var user models.User
	if err := config.DB.First(&user, sess.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	refreshToken, err := user.RefreshToken()
	if err != nil {
		slog.Error("Failed to decrypt refresh token", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}

	ctx := c.Request.Context()
	token, err := config.GoogleOAuth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		slog.Error("Failed to refresh access token", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}

	sess.Token = token
	if err := auth.NewSessionStore(config.RDB).Put(ctx, sessionID, sess); err != nil {
		slog.Error("Failed to store refreshed session", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LogoutHandler удаляет сессию и чистит cookies.
func LogoutHandler(c *gin.Context) {
	if tokenStr, err := c.Cookie(auth.SessionCookie); err == nil && tokenStr != "" {
		if sessionID, err := auth.ParseSessionToken(tokenStr, config.JwtKey); err == nil && config.RDB != nil {
			if err := auth.NewSessionStore(config.RDB).Delete(c.Request.Context(), sessionID); err != nil {
				slog.Warn("Failed to delete session on logout", "error", err)
			}
		}
	}

	clearSessionCookie(c)
	c.SetCookie(stateCookie, "", -1, "/", "", config.IsProduction, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
