package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"tastytracker/database"
	"tastytracker/middleware"
	"tastytracker/models"
)

type ClientHandler struct {
	log      *zap.Logger
	validate *validator.Validate
}

func NewClientHandler(log *zap.Logger) *ClientHandler {
	return &ClientHandler{
		log:      log.Named("clients"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	var clients []models.Client
	if err := database.GetDB().Preload("Projects").Order("name asc").Find(&clients).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load clients")
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

type clientRequest struct {
	Name    string `json:"name" validate:"required"`
	Company string `json:"company"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())
	if !profile.CanManageProjects() {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	client := models.Client{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
	}
	if err := database.GetDB().Create(&client).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not create client")
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())
	if !profile.CanManageProjects() {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	id, err := pathID(r, "clientID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var client models.Client
	if err := database.GetDB().First(&client, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "client not found")
		return
	}

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	client.Name = req.Name
	client.Company = req.Company
	client.Email = req.Email
	client.Phone = req.Phone
	if err := database.GetDB().Save(&client).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not update client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())
	if !profile.CanManageProjects() {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	id, err := pathID(r, "clientID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	if err := database.GetDB().Delete(&models.Client{}, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not delete client")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
