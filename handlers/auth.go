package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tastytracker/config"
	"tastytracker/database"
	"tastytracker/middleware"
	"tastytracker/models"
)

type AuthHandler struct {
	cfg      *config.Config
	log      *zap.Logger
	validate *validator.Validate
}

func NewAuthHandler(cfg *config.Config, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		log:      log.Named("auth"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	var profile models.Profile
	if err := database.GetDB().Where("email = ?", req.Email).First(&profile).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := middleware.GenerateToken(&profile, h.cfg.JWTExpiration)
	if err != nil {
		h.log.Error("token generation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.JWTExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"profile": profile,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusNoContent, nil)
}

type acceptInviteRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// AcceptInvite redeems an invite code: the pre-created profile gets its
// password and the invite is burned. Mirrors the original's email
// invitation landing.
func (h *AuthHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	db := database.GetDB()

	var invite models.Invite
	if err := db.Where("code = ?", req.Code).First(&invite).Error; err != nil {
		respondError(w, http.StatusNotFound, "invite not found")
		return
	}
	if !invite.IsValid() {
		respondError(w, http.StatusGone, "invite expired or already used")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not accept invite")
		return
	}

	var profile models.Profile
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", invite.Email).First(&profile).Error; err != nil {
			return err
		}
		profile.PasswordHash = string(hashedPassword)
		profile.MustChangePassword = false
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		invite.Used = true
		return tx.Save(&invite).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "no profile for this invite")
			return
		}
		h.log.Error("invite acceptance failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not accept invite")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		respondError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not change password")
		return
	}

	profile.PasswordHash = string(hashedPassword)
	profile.MustChangePassword = false
	if err := database.GetDB().Save(profile).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not change password")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, middleware.GetUserFromContext(r.Context()))
}

type calendarTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// SetCalendarToken stores the caller's calendar OAuth access token.
// Sync uses it as-is; when it expires the user reconnects, there is no
// refresh flow.
func (h *AuthHandler) SetCalendarToken(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	var req calendarTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	profile.CalendarToken = req.Token
	if err := database.GetDB().Save(profile).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not store token")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
