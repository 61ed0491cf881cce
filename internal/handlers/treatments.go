package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pd-care-server/internal/middleware"
	"pd-care-server/internal/models"
	"pd-care-server/internal/utils"
)

// TreatmentHandler handles PD exchange logging.
type TreatmentHandler struct {
	DB *gorm.DB
}

// NewTreatmentHandler creates a new TreatmentHandler.
func NewTreatmentHandler(db *gorm.DB) *TreatmentHandler {
	return &TreatmentHandler{DB: db}
}

// LogTreatmentRequest represents the request body for logging one exchange.
type LogTreatmentRequest struct {
	ExchangeAt    time.Time `json:"exchangeAt" binding:"required"`
	Dialysate     string    `json:"dialysate" binding:"required,oneof=1.5% 2.5% 4.25%"`
	FillVolumeML  int       `json:"fillVolumeMl" binding:"required,gt=0"`
	DrainVolumeML int       `json:"drainVolumeMl" binding:"required,gt=0"`
	DwellMinutes  int       `json:"dwellMinutes" binding:"required,gt=0"`
	WeightKg      float64   `json:"weightKg"`
	BloodPressure string    `json:"bloodPressure"`
	Remarks       string    `json:"remarks"`
}

// LogTreatment handles a patient logging a PD exchange.
func (h *TreatmentHandler) LogTreatment(c *gin.Context) {
	var req LogTreatmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if req.ExchangeAt.After(time.Now()) {
		utils.BadRequest(c, "Exchange time cannot be in the future.")
		return
	}

	treatment := models.Treatment{
		PatientID:         patientID,
		ExchangeAt:        req.ExchangeAt,
		Dialysate:         models.DialysateStrength(req.Dialysate),
		FillVolumeML:      req.FillVolumeML,
		DrainVolumeML:     req.DrainVolumeML,
		UltrafiltrationML: req.DrainVolumeML - req.FillVolumeML,
		DwellMinutes:      req.DwellMinutes,
		WeightKg:          req.WeightKg,
		BloodPressure:     req.BloodPressure,
		Remarks:           req.Remarks,
	}

	if err := h.DB.Create(&treatment).Error; err != nil {
		utils.InternalServerError(c, "Failed to log treatment: "+err.Error())
		return
	}

	utils.Created(c, "Treatment logged successfully", treatment)
}

// GetTreatments handles listing exchanges. Patients see their own;
// clinicians pass ?patientId= to review a patient's log.
func (h *TreatmentHandler) GetTreatments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	patientID := userID
	if userRole != models.RolePatient {
		patientID = c.Query("patientId")
		if patientID == "" {
			utils.BadRequest(c, "patientId query parameter is required")
			return
		}
	}

	var treatments []models.Treatment
	if err := h.DB.Where("patient_id = ?", patientID).
		Order("exchange_at desc").
		Find(&treatments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch treatments: "+err.Error())
		return
	}

	utils.Success(c, "Treatments fetched successfully", treatments)
}

// GetTreatmentByID handles fetching one exchange log.
func (h *TreatmentHandler) GetTreatmentByID(c *gin.Context) {
	treatmentID := c.Param("id")

	var treatment models.Treatment
	if err := h.DB.First(&treatment, "id = ?", treatmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Treatment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RolePatient && treatment.PatientID != userID {
		utils.Forbidden(c, "You are not authorized to view this treatment")
		return
	}

	utils.Success(c, "Treatment fetched successfully", treatment)
}
