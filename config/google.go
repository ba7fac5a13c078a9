// FILE: config/google.go
package config

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
)

var (
	// GoogleOAuth - общий OAuth-конфиг. Токены в нем не хранятся,
	// они живут в Redis-сессии каждого пользователя.
	GoogleOAuth *oauth2.Config
)

// InitGoogleOAuth инициализирует конфиг для обмена authorization code
// на учетные данные Google.
func InitGoogleOAuth() error {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURI := os.Getenv("GOOGLE_REDIRECT_URI")
	if clientID == "" || clientSecret == "" || redirectURI == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URI must be set")
	}

	GoogleOAuth = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			calendar.CalendarReadonlyScope,
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
	slog.Info("Google OAuth client configured", "redirect_uri", redirectURI)

	return nil
}
