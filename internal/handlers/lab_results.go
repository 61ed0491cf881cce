package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pd-care-server/internal/middleware"
	"pd-care-server/internal/models"
	"pd-care-server/internal/utils"
)

// LabResultHandler handles laboratory results.
type LabResultHandler struct {
	DB *gorm.DB
}

// NewLabResultHandler creates a new LabResultHandler.
func NewLabResultHandler(db *gorm.DB) *LabResultHandler {
	return &LabResultHandler{DB: db}
}

// CreateLabResultRequest represents the request body for recording a lab value.
type CreateLabResultRequest struct {
	PatientID      string    `json:"patientId" binding:"required,uuid"`
	TestName       string    `json:"testName" binding:"required"`
	Value          float64   `json:"value" binding:"required"`
	Unit           string    `json:"unit" binding:"required"`
	ReferenceRange string    `json:"referenceRange"`
	TakenAt        time.Time `json:"takenAt" binding:"required"`
	Remarks        string    `json:"remarks"`
}

// CreateLabResult handles a clinician recording a lab value.
func (h *LabResultHandler) CreateLabResult(c *gin.Context) {
	var req CreateLabResultRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, _ := middleware.GetUserIDFromContext(c)

	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	result := models.LabResult{
		PatientID:      req.PatientID,
		DoctorID:       doctorID,
		TestName:       req.TestName,
		Value:          req.Value,
		Unit:           req.Unit,
		ReferenceRange: req.ReferenceRange,
		TakenAt:        req.TakenAt,
		Remarks:        req.Remarks,
	}

	if err := h.DB.Create(&result).Error; err != nil {
		utils.InternalServerError(c, "Failed to record lab result: "+err.Error())
		return
	}

	utils.Created(c, "Lab result recorded successfully", result)
}

// GetLabResultsForPatient handles listing a patient's lab results.
func (h *LabResultHandler) GetLabResultsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RolePatient && patientID != userID {
		utils.Forbidden(c, "You are not authorized to view these lab results")
		return
	}

	var results []models.LabResult
	if err := h.DB.Where("patient_id = ?", patientID).
		Order("taken_at desc").
		Find(&results).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch lab results: "+err.Error())
		return
	}

	utils.Success(c, "Lab results fetched successfully", results)
}
