package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tastytracker/config"
	"tastytracker/database"
	"tastytracker/middleware"
	"tastytracker/models"
	"tastytracker/reports"
)

type TeamHandler struct {
	cfg      *config.Config
	log      *zap.Logger
	validate *validator.Validate
}

func NewTeamHandler(cfg *config.Config, log *zap.Logger) *TeamHandler {
	return &TeamHandler{
		cfg:      cfg,
		log:      log.Named("team"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type teamMember struct {
	models.Profile
	MonthHours float64 `json:"month_hours"`
}

// List returns every profile with the hours they logged this month.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	db := database.GetDB()

	var profiles []models.Profile
	if err := db.Order("full_name asc").Find(&profiles).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load team")
		return
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	type userMinutes struct {
		UserID uuid.UUID
		Total  int64
	}
	var sums []userMinutes
	err := db.Model(&models.TimeEntry{}).
		Select("user_id, sum(duration_minutes) as total").
		Where("date >= ? AND date < ?", monthStart, monthEnd).
		Group("user_id").
		Scan(&sums).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load team")
		return
	}

	byUser := make(map[uuid.UUID]int64, len(sums))
	for _, s := range sums {
		byUser[s.UserID] = s.Total
	}

	members := make([]teamMember, 0, len(profiles))
	for _, p := range profiles {
		members = append(members, teamMember{
			Profile:    p,
			MonthHours: reports.Hours(int(byUser[p.ID])),
		})
	}
	respondJSON(w, http.StatusOK, members)
}

type inviteRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	FullName   string          `json:"full_name" validate:"required"`
	Role       models.Role     `json:"role" validate:"required"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	AvatarURL  string          `json:"avatar_url"`
}

// Invite runs the two-step member invitation: first the invite
// credential, then the profile row keyed by it. As in the original, a
// profile failure after the invite succeeded is reported but not
// compensated — the invite row remains and can be retried.
func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())
	if !profile.CanInviteMembers() {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}
	if !req.Role.Valid() {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}

	db := database.GetDB()

	var existing int64
	db.Model(&models.Profile{}).Where("email = ?", req.Email).Count(&existing)
	if existing > 0 {
		respondError(w, http.StatusConflict, "a profile with this email already exists")
		return
	}

	code, err := models.GenerateInviteCode()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not create invite")
		return
	}

	// Step 1: the invite credential.
	invite := models.Invite{
		Code:       code,
		Email:      req.Email,
		FullName:   req.FullName,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
		CreatedBy:  profile.ID,
		ExpiresAt:  time.Now().Add(h.cfg.InviteExpiration),
	}
	if err := db.Create(&invite).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not create invite")
		return
	}

	// Step 2: the profile row. Activated when the invite is redeemed.
	invited := models.Profile{
		Email:              req.Email,
		FullName:           req.FullName,
		Role:               req.Role,
		HourlyRate:         req.HourlyRate,
		AvatarURL:          req.AvatarURL,
		PasswordHash:       "!invited",
		MustChangePassword: true,
	}
	if err := db.Create(&invited).Error; err != nil {
		h.log.Error("profile creation failed after invite",
			zap.Error(err), zap.String("email", req.Email))
		respondError(w, http.StatusInternalServerError, "invite created but profile setup failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"invite":  invite,
		"profile": invited,
	})
}

type updateMemberRequest struct {
	FullName   string          `json:"full_name" validate:"required"`
	Role       models.Role     `json:"role" validate:"required"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	AvatarURL  string          `json:"avatar_url"`
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())
	if !caller.CanManageTeam() {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	id, err := pathID(r, "memberID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var member models.Profile
	if err := database.GetDB().First(&member, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "member not found")
		return
	}

	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}
	if !req.Role.Valid() {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}

	member.FullName = req.FullName
	member.Role = req.Role
	member.HourlyRate = req.HourlyRate
	member.AvatarURL = req.AvatarURL
	if err := database.GetDB().Save(&member).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not update member")
		return
	}
	respondJSON(w, http.StatusOK, member)
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())
	if !caller.CanManageTeam() {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	id, err := pathID(r, "memberID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	if id == caller.ID {
		respondError(w, http.StatusBadRequest, "cannot remove yourself")
		return
	}

	if err := database.GetDB().Delete(&models.Profile{}, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not remove member")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
