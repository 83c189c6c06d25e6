package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/marketmapper/marketmapper/internal/application"
	"github.com/marketmapper/marketmapper/internal/infrastructure/session"
	"github.com/marketmapper/marketmapper/pkg/helpers"
	"github.com/marketmapper/marketmapper/pkg/render"
	"github.com/marketmapper/marketmapper/pkg/validation"
)

// AuthHandler owns login, signup, the Google OAuth handshake, and logout.
type AuthHandler struct {
	Auth     *application.AuthService
	Sessions session.Manager
	Cookies  *helpers.CookieManager
	State    *helpers.OAuthStateSigner
	Google   *oauth2.Config
	Logger   *logrus.Logger
}

// GoogleOAuthConfig builds the oauth2 config for the Google code flow.
func GoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

func NewAuthHandler(auth *application.AuthService, sessions session.Manager, cookies *helpers.CookieManager, state *helpers.OAuthStateSigner, googleCfg *oauth2.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		Auth:     auth,
		Sessions: sessions,
		Cookies:  cookies,
		State:    state,
		Google:   googleCfg,
		Logger:   logger,
	}
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type signupForm struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,pwd"`
}

// LoginForm GET /login
func (h *AuthHandler) LoginForm(c *gin.Context) {
	render.HTML(c, http.StatusOK, "login.tmpl", gin.H{
		"title": "Sign In",
		"link":  "login",
	})
}

// Login POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		flashAndRedirect(c, h.Sessions, session.FlashError, validation.FirstMessage(err), "/login")
		return
	}

	u, err := h.Auth.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmailNotRegistered):
			flashAndRedirect(c, h.Sessions, session.FlashError, "Email does not exist. Please register first.", "/login")
		case errors.Is(err, application.ErrInvalidCredentials):
			flashAndRedirect(c, h.Sessions, session.FlashError, "Incorrect email or password.", "/login")
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).Error("login failed")
			}
			flashAndRedirect(c, h.Sessions, session.FlashError, "Something went wrong. Please try again.", "/login")
		}
		return
	}

	h.establishSession(c, u.ID)
	c.Redirect(http.StatusFound, h.afterLoginURL(c))
}

// Signup POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		flashAndRedirect(c, h.Sessions, session.FlashError, validation.FirstMessage(err), "/login")
		return
	}

	u, err := h.Auth.Signup(c.Request.Context(), form.Email, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, application.ErrDuplicateEmail) {
			flashAndRedirect(c, h.Sessions, session.FlashError, "That email is already registered. Try logging in.", "/login")
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).Error("signup failed")
		}
		flashAndRedirect(c, h.Sessions, session.FlashError, "Could not create your account. Please try again.", "/login")
		return
	}

	h.establishSession(c, u.ID)
	flashAndRedirect(c, h.Sessions, session.FlashSuccess, "Welcome to MarketMapper!", "/dashboard")
}

// GoogleRedirect GET /auth/google: sends the browser to Google's consent page.
func (h *AuthHandler) GoogleRedirect(c *gin.Context) {
	if h.Google == nil {
		flashAndRedirect(c, h.Sessions, session.FlashError, "Google login is not configured.", "/login")
		return
	}
	state, err := h.State.Issue("google")
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("oauth state issue failed")
		}
		flashAndRedirect(c, h.Sessions, session.FlashError, "Could not start Google login.", "/login")
		return
	}
	c.Redirect(http.StatusFound, h.Google.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GoogleCallback GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		flashAndRedirect(c, h.Sessions, session.FlashError, "Google login is not configured.", "/login")
		return
	}

	// Validate state to prevent CSRF.
	provider, err := h.State.Verify(c.Query("state"))
	if err != nil || provider != "google" {
		flashAndRedirect(c, h.Sessions, session.FlashError, "Google login failed. Please try again.", "/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		flashAndRedirect(c, h.Sessions, session.FlashError, "Google login was cancelled.", "/login")
		return
	}

	token, err := h.Google.Exchange(c.Request.Context(), code)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("oauth code exchange failed")
		}
		flashAndRedirect(c, h.Sessions, session.FlashError, "Google login failed. Please try again.", "/login")
		return
	}

	profile, err := fetchGoogleProfile(c.Request.Context(), token.AccessToken)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("google userinfo fetch failed")
		}
		flashAndRedirect(c, h.Sessions, session.FlashError, "Google login failed. Please try again.", "/login")
		return
	}

	u, err := h.Auth.LoginWithGoogle(c.Request.Context(), profile)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("google login upsert failed")
		}
		flashAndRedirect(c, h.Sessions, session.FlashError, "Google login failed. Please try again.", "/login")
		return
	}

	h.establishSession(c, u.ID)
	flashAndRedirect(c, h.Sessions, session.FlashSuccess, "Welcome to MarketMapper!", h.afterLoginURL(c))
}

// Logout GET /logout: destroys the session; calling it twice is harmless.
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := sessionID(c)
	if err := h.Sessions.Destroy(c.Request.Context(), sid); err != nil && h.Logger != nil {
		h.Logger.WithError(err).Warn("session destroy failed")
	}
	flashAndRedirect(c, h.Sessions, session.FlashSuccess, "Logged out successfully.", "/")
}

func (h *AuthHandler) establishSession(c *gin.Context, userID string) {
	sid := sessionID(c)
	if err := h.Sessions.SetUser(c.Request.Context(), sid, userID); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("user_id", userID).Error("session establish failed")
	}
	h.Cookies.SetSession(c, sid)
}

func (h *AuthHandler) afterLoginURL(c *gin.Context) string {
	url, err := h.Sessions.PopRedirectURL(c.Request.Context(), sessionID(c))
	if err != nil || url == "" {
		return "/dashboard"
	}
	return url
}

func fetchGoogleProfile(ctx context.Context, accessToken string) (application.GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return application.GoogleProfile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return application.GoogleProfile{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return application.GoogleProfile{}, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body)
	}

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return application.GoogleProfile{}, fmt.Errorf("parse google user info: %w", err)
	}
	return application.GoogleProfile{
		ID:         info.ID,
		Email:      info.Email,
		Name:       info.Name,
		PictureURL: info.Picture,
	}, nil
}
