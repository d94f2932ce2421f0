package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tastytracker/database"
	"tastytracker/middleware"
	"tastytracker/models"
)

// ProjectItemHandler serves the per-project sub-resources: members,
// updates and file metadata.
type ProjectItemHandler struct {
	log      *zap.Logger
	validate *validator.Validate
}

func NewProjectItemHandler(log *zap.Logger) *ProjectItemHandler {
	return &ProjectItemHandler{
		log:      log.Named("project-items"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *ProjectItemHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var members []models.ProjectMember
	if err := database.GetDB().Preload("User").Where("project_id = ?", projectID).Find(&members).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not load members")
		return
	}
	respondJSON(w, http.StatusOK, members)
}

type addMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

func (h *ProjectItemHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	db := database.GetDB()
	var count int64
	db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, req.UserID).
		Count(&count)
	if count > 0 {
		respondError(w, http.StatusConflict, "already a member")
		return
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    req.UserID,
	}
	if err := db.Create(&member).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not add member")
		return
	}
	db.Preload("User").First(&member, "id = ?", member.ID)
	respondJSON(w, http.StatusCreated, member)
}

func (h *ProjectItemHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "memberID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	if err := database.GetDB().Delete(&models.ProjectMember{}, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not remove member")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *ProjectItemHandler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var updates []models.ProjectUpdate
	err = database.GetDB().Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&updates).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load updates")
		return
	}
	respondJSON(w, http.StatusOK, updates)
}

type addUpdateRequest struct {
	Content string `json:"content" validate:"required"`
}

// AddUpdate appends an activity note. Updates are never edited or
// deleted.
func (h *ProjectItemHandler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req addUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	update := models.ProjectUpdate{
		ProjectID: projectID,
		UserID:    profile.ID,
		Content:   req.Content,
	}
	if err := database.GetDB().Create(&update).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not add update")
		return
	}
	respondJSON(w, http.StatusCreated, update)
}

func (h *ProjectItemHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var files []models.ProjectFile
	err = database.GetDB().Preload("Uploader").
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&files).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load files")
		return
	}
	respondJSON(w, http.StatusOK, files)
}

type addFileRequest struct {
	FileName string `json:"file_name" validate:"required"`
	FileType string `json:"file_type"`
	FileURL  string `json:"file_url" validate:"required,url"`
	FileSize int64  `json:"file_size" validate:"gte=0"`
}

// AddFile records metadata for a blob already uploaded to external
// storage; the service never touches the bytes.
func (h *ProjectItemHandler) AddFile(w http.ResponseWriter, r *http.Request) {
	profile := middleware.GetUserFromContext(r.Context())

	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req addFileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	file := models.ProjectFile{
		ProjectID:  projectID,
		UploadedBy: profile.ID,
		FileName:   req.FileName,
		FileType:   req.FileType,
		FileURL:    req.FileURL,
		FileSize:   req.FileSize,
	}
	if err := database.GetDB().Create(&file).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not add file")
		return
	}
	respondJSON(w, http.StatusCreated, file)
}

func (h *ProjectItemHandler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "fileID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	var file models.ProjectFile
	if err := database.GetDB().First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(w, http.StatusNotFound, "file not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "could not remove file")
		return
	}

	if err := database.GetDB().Delete(&file).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "could not remove file")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
