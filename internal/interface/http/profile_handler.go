package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marketmapper/marketmapper/internal/application"
	"github.com/marketmapper/marketmapper/internal/infrastructure/session"
	"github.com/marketmapper/marketmapper/internal/interface/middleware"
	"github.com/marketmapper/marketmapper/pkg/helpers"
	"github.com/marketmapper/marketmapper/pkg/render"
)

// ProfileHandler serves the profile pages and the display-name/avatar update.
type ProfileHandler struct {
	Auth     *application.AuthService
	Sessions session.Manager
	Logger   *logrus.Logger

	GCS       *storage.Client
	GCSBucket string
}

func NewProfileHandler(auth *application.AuthService, sessions session.Manager, logger *logrus.Logger, gcs *storage.Client, gcsBucket string) *ProfileHandler {
	return &ProfileHandler{Auth: auth, Sessions: sessions, Logger: logger, GCS: gcs, GCSBucket: gcsBucket}
}

// Show GET /profile
func (h *ProfileHandler) Show(c *gin.Context) {
	render.HTML(c, http.StatusOK, "profile.tmpl", gin.H{
		"title": "Your Profile",
		"link":  "profile",
	})
}

// Edit GET /profile/edit
func (h *ProfileHandler) Edit(c *gin.Context) {
	render.HTML(c, http.StatusOK, "editProfile.tmpl", gin.H{
		"title": "Edit Profile",
		"link":  "profile",
	})
}

// Update POST /profile/update: changes the display name and optionally
// uploads a new avatar image.
func (h *ProfileHandler) Update(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	username := strings.TrimSpace(c.PostForm("username"))

	imageURL := ""
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		url, uerr := h.uploadAvatar(c, user.ID, file)
		if uerr != nil {
			if h.Logger != nil {
				h.Logger.WithError(uerr).WithField("user_id", user.ID).Error("avatar upload failed")
			}
			flashAndRedirect(c, h.Sessions, session.FlashError, "Could not upload your picture.", "/profile/edit")
			return
		}
		imageURL = url
	}

	if _, err := h.Auth.UpdateProfile(c.Request.Context(), user.ID, application.UpdateProfileInput{
		Username: username,
		ImageURL: imageURL,
	}); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", user.ID).Error("profile update failed")
		}
		flashAndRedirect(c, h.Sessions, session.FlashError, "Could not update your profile.", "/profile/edit")
		return
	}

	flashAndRedirect(c, h.Sessions, session.FlashSuccess, "Profile updated.", "/profile")
}

func (h *ProfileHandler) uploadAvatar(c *gin.Context, userID string, fh *multipart.FileHeader) (string, error) {
	if h.GCS == nil || h.GCSBucket == "" {
		return "", errors.New("avatar storage not configured")
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	return helpers.UploadObject(c.Request.Context(), h.GCS, h.GCSBucket, objectPath, fh.Header.Get("Content-Type"), src)
}
