package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pd-care-server/internal/middleware"
	"pd-care-server/internal/models"
	"pd-care-server/internal/schedule"
	"pd-care-server/internal/utils"
)

// PatientHandler handles PD patient registration and lookup.
type PatientHandler struct {
	DB        *gorm.DB
	Scheduler *schedule.Service
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, scheduler *schedule.Service) *PatientHandler {
	return &PatientHandler{DB: db, Scheduler: scheduler}
}

// RegisterPatientRequest represents the request body for registering a
// PD patient at the clinic.
type RegisterPatientRequest struct {
	FirstName      string  `json:"firstName" binding:"required"`
	LastName       string  `json:"lastName" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	HospitalNumber string  `json:"hospitalNumber" binding:"required"`
	Modality       string  `json:"modality" binding:"required,oneof=capd apd"`
	DryWeightKg    float64 `json:"dryWeightKg"`
	DoctorID       string  `json:"doctorId" binding:"required,uuid"`
	FirstCheckup   string  `json:"firstCheckup"` // YYYY-MM-DD; defaults to today
	MedicalHistory string  `json:"medicalHistory"`
}

// RegisteredPatient is the response body for a successful registration.
type RegisteredPatient struct {
	User      models.UserSanitized  `json:"user"`
	Profile   models.PatientProfile `json:"profile"`
	Schedules []models.Schedule     `json:"schedules"`
}

// RegisterPatient creates the patient account and profile and seeds the
// one-year checkup schedule on the clinic cadence.
func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	staffID, _ := middleware.GetUserIDFromContext(c)

	// Verify the assigned doctor exists and is a doctor
	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", req.DoctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found or user is not a doctor")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	firstCheckup := schedule.DateOf(time.Now())
	if req.FirstCheckup != "" {
		var err error
		firstCheckup, err = schedule.ParseDate(req.FirstCheckup)
		if err != nil {
			utils.BadRequest(c, "Invalid firstCheckup date, expected YYYY-MM-DD")
			return
		}
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.RolePatient,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	profile := models.PatientProfile{
		HospitalNumber: req.HospitalNumber,
		Modality:       models.DialysisModality(req.Modality),
		DryWeightKg:    req.DryWeightKg,
		DoctorID:       req.DoctorID,
		MedicalHistory: req.MedicalHistory,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(&profile).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to register patient: "+err.Error())
		return
	}

	schedules, err := h.Scheduler.SeedForPatient(c.Request.Context(), user.ID, staffID, firstCheckup)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Created(c, "Patient registered successfully", RegisteredPatient{
		User:      user.Sanitize(),
		Profile:   profile,
		Schedules: schedules,
	})
}

// GetPatients handles listing patient profiles for the clinic side.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("User").Preload("Doctor")
	if userRole == models.RoleDoctor {
		query = query.Where("doctor_id = ?", userID)
	}

	var profiles []models.PatientProfile
	if err := query.Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", profiles)
}

// GetPatientByID handles fetching one patient profile. Patients can
// only see their own.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	profileID := c.Param("id")

	var profile models.PatientProfile
	if err := h.DB.Preload("User").Preload("Doctor").First(&profile, "id = ?", profileID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RolePatient && profile.UserID != userID {
		utils.Forbidden(c, "You are not authorized to view this patient")
		return
	}

	utils.Success(c, "Patient fetched successfully", profile)
}
