package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pd-care-server/internal/middleware"
	"pd-care-server/internal/models"
	"pd-care-server/internal/utils"
)

// PrescriptionHandler handles PD prescriptions written by doctors.
type PrescriptionHandler struct {
	DB *gorm.DB
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(db *gorm.DB) *PrescriptionHandler {
	return &PrescriptionHandler{DB: db}
}

// CreatePrescriptionRequest represents the request body for a new prescription.
type CreatePrescriptionRequest struct {
	PatientID       string     `json:"patientId" binding:"required,uuid"`
	Regimen         string     `json:"regimen" binding:"required"`
	ExchangesPerDay int        `json:"exchangesPerDay" binding:"required,gt=0"`
	Dialysate       string     `json:"dialysate" binding:"required"`
	FillVolumeML    int        `json:"fillVolumeMl" binding:"required,gt=0"`
	Instructions    string     `json:"instructions"`
	ValidFrom       time.Time  `json:"validFrom" binding:"required"`
	ValidUntil      *time.Time `json:"validUntil"`
}

// CreatePrescription handles a doctor writing a PD prescription.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	var req CreatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, _ := middleware.GetUserIDFromContext(c)

	// Verify patient exists
	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, models.RolePatient).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	prescription := models.Prescription{
		PatientID:       req.PatientID,
		DoctorID:        doctorID,
		Regimen:         req.Regimen,
		ExchangesPerDay: req.ExchangesPerDay,
		Dialysate:       req.Dialysate,
		FillVolumeML:    req.FillVolumeML,
		Instructions:    req.Instructions,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
	}

	if err := h.DB.Create(&prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to create prescription: "+err.Error())
		return
	}

	utils.Created(c, "Prescription created successfully", prescription)
}

// GetPrescriptionsForPatient handles listing a patient's prescriptions.
func (h *PrescriptionHandler) GetPrescriptionsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RolePatient && patientID != userID {
		utils.Forbidden(c, "You are not authorized to view these prescriptions")
		return
	}

	var prescriptions []models.Prescription
	if err := h.DB.Where("patient_id = ?", patientID).
		Order("valid_from desc").
		Find(&prescriptions).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}

	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}

// UpdatePrescriptionRequest represents the request body for updating a prescription.
type UpdatePrescriptionRequest struct {
	Regimen         string     `json:"regimen"`
	ExchangesPerDay int        `json:"exchangesPerDay"`
	Dialysate       string     `json:"dialysate"`
	FillVolumeML    int        `json:"fillVolumeMl"`
	Instructions    string     `json:"instructions"`
	ValidUntil      *time.Time `json:"validUntil"`
}

// UpdatePrescription handles a doctor amending their prescription.
func (h *PrescriptionHandler) UpdatePrescription(c *gin.Context) {
	prescriptionID := c.Param("id")

	var req UpdatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var prescription models.Prescription
	if err := h.DB.First(&prescription, "id = ?", prescriptionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Prescription not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleDoctor && prescription.DoctorID != userID {
		utils.Forbidden(c, "You can only amend your own prescriptions")
		return
	}

	if req.Regimen != "" {
		prescription.Regimen = req.Regimen
	}
	if req.ExchangesPerDay > 0 {
		prescription.ExchangesPerDay = req.ExchangesPerDay
	}
	if req.Dialysate != "" {
		prescription.Dialysate = req.Dialysate
	}
	if req.FillVolumeML > 0 {
		prescription.FillVolumeML = req.FillVolumeML
	}
	if req.Instructions != "" {
		prescription.Instructions = req.Instructions
	}
	if req.ValidUntil != nil {
		prescription.ValidUntil = req.ValidUntil
	}

	if err := h.DB.Save(&prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to update prescription: "+err.Error())
		return
	}

	utils.Success(c, "Prescription updated successfully", prescription)
}
