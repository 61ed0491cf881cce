package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"pd-care-server/internal/middleware"
	"pd-care-server/internal/models"
	"pd-care-server/internal/schedule"
	"pd-care-server/internal/utils"
)

// ScheduleHandler handles checkup schedule requests: listings, the
// reschedule workflow, attendance confirmation and the daily limit.
type ScheduleHandler struct {
	Scheduler *schedule.Service
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduler *schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{Scheduler: scheduler}
}

// GetUpcoming handles fetching the authenticated patient's upcoming checkups.
func (h *ScheduleHandler) GetUpcoming(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	rows, err := h.Scheduler.UpcomingForPatient(c.Request.Context(), userID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Upcoming checkups fetched successfully", rows)
}

// GetSchedules handles listing schedules for the logged-in user.
// Patients see their own rows; the clinic side sees all. An optional
// ?status=active|upcoming|missed query narrows the listing.
func (h *ScheduleHandler) GetSchedules(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)
	scope := c.Query("status")

	var (
		rows []models.Schedule
		err  error
	)
	if userRole == models.RolePatient {
		rows, err = h.Scheduler.ListForPatient(c.Request.Context(), userID, scope)
	} else {
		rows, err = h.Scheduler.ListAll(c.Request.Context(), scope)
	}
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Schedules fetched successfully", rows)
}

// RescheduleRequestBody represents the request body for a patient
// reschedule request.
type RescheduleRequestBody struct {
	NewAppointmentDate string `json:"newAppointmentDate" binding:"required"`
	Reason             string `json:"reason" binding:"required"`
}

// RequestReschedule handles a patient asking to move a checkup.
func (h *ScheduleHandler) RequestReschedule(c *gin.Context) {
	scheduleID := c.Param("id")

	var req RescheduleRequestBody
	if !utils.BindAndValidate(c, &req) {
		return
	}

	newDate, err := schedule.ParseDate(req.NewAppointmentDate)
	if err != nil {
		utils.BadRequest(c, "Invalid newAppointmentDate, expected YYYY-MM-DD")
		return
	}

	patientID, _ := middleware.GetUserIDFromContext(c)

	row, err := h.Scheduler.RequestReschedule(c.Request.Context(), scheduleID, patientID, newDate, req.Reason)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Reschedule request submitted", row)
}

// ApproveReschedule handles a clinician accepting a pending request.
func (h *ScheduleHandler) ApproveReschedule(c *gin.Context) {
	scheduleID := c.Param("id")
	staffID, _ := middleware.GetUserIDFromContext(c)

	row, err := h.Scheduler.ApproveReschedule(c.Request.Context(), scheduleID, staffID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Reschedule request approved", row)
}

// DenyRescheduleBody represents the request body for denying a request.
type DenyRescheduleBody struct {
	Note string `json:"note"`
}

// DenyReschedule handles a clinician rejecting a pending request.
func (h *ScheduleHandler) DenyReschedule(c *gin.Context) {
	scheduleID := c.Param("id")
	staffID, _ := middleware.GetUserIDFromContext(c)

	var req DenyRescheduleBody
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	row, err := h.Scheduler.DenyReschedule(c.Request.Context(), scheduleID, staffID, req.Note)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Reschedule request denied", row)
}

// ConfirmBody represents the request body for attendance confirmation.
type ConfirmBody struct {
	Decision string `json:"decision" binding:"required,oneof=confirm deny"`
}

// Confirm handles the patient's attendance decision inside the
// confirmation window.
func (h *ScheduleHandler) Confirm(c *gin.Context) {
	scheduleID := c.Param("id")
	patientID, _ := middleware.GetUserIDFromContext(c)

	var req ConfirmBody
	if !utils.BindAndValidate(c, &req) {
		return
	}

	row, err := h.Scheduler.Confirm(c.Request.Context(), scheduleID, patientID, schedule.ConfirmDecision(req.Decision))
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Attendance recorded", row)
}

// DailyLimitBody represents the request body for a daily-limit probe.
type DailyLimitBody struct {
	Date string `json:"date" binding:"required"`
}

// DailyLimitResponse reports whether a date is fully booked.
type DailyLimitResponse struct {
	Date         string `json:"date"`
	LimitReached bool   `json:"limitReached"`
}

// DailyLimitStatus handles probing the booking capacity of a date.
func (h *ScheduleHandler) DailyLimitStatus(c *gin.Context) {
	var req DailyLimitBody
	if !utils.BindAndValidate(c, &req) {
		return
	}

	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	reached, err := h.Scheduler.DailyLimitReached(c.Request.Context(), date)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Daily limit status fetched", DailyLimitResponse{
		Date:         req.Date,
		LimitReached: reached,
	})
}

// GetRescheduleRequests handles listing open reschedule requests across
// patients for the clinic side.
func (h *ScheduleHandler) GetRescheduleRequests(c *gin.Context) {
	rows, err := h.Scheduler.PendingRescheduleRequests(c.Request.Context())
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Reschedule requests fetched successfully", rows)
}

// RescheduleMissedBody represents the optional body for the bulk rebook.
type RescheduleMissedBody struct {
	NewAppointmentDate string `json:"newAppointmentDate"`
}

// RescheduleMissed handles the bulk rebooking of all missed checkups.
func (h *ScheduleHandler) RescheduleMissed(c *gin.Context) {
	staffID, _ := middleware.GetUserIDFromContext(c)

	var req RescheduleMissedBody
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var chosen *time.Time
	if req.NewAppointmentDate != "" {
		date, err := schedule.ParseDate(req.NewAppointmentDate)
		if err != nil {
			utils.BadRequest(c, "Invalid newAppointmentDate, expected YYYY-MM-DD")
			return
		}
		chosen = &date
	}

	result, err := h.Scheduler.RescheduleMissed(c.Request.Context(), staffID, chosen)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Missed checkups rescheduled", result)
}

// RemarksBody represents the request body for completing or cancelling.
type RemarksBody struct {
	Remarks string `json:"remarks"`
}

// CompleteCheckup handles marking a checkup as done.
func (h *ScheduleHandler) CompleteCheckup(c *gin.Context) {
	scheduleID := c.Param("id")
	staffID, _ := middleware.GetUserIDFromContext(c)

	var req RemarksBody
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	row, err := h.Scheduler.CompleteCheckup(c.Request.Context(), scheduleID, staffID, req.Remarks)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Checkup marked as completed", row)
}

// CancelSchedule handles cancelling a checkup occurrence.
func (h *ScheduleHandler) CancelSchedule(c *gin.Context) {
	scheduleID := c.Param("id")
	staffID, _ := middleware.GetUserIDFromContext(c)

	var req RemarksBody
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	row, err := h.Scheduler.CancelSchedule(c.Request.Context(), scheduleID, staffID, req.Remarks)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Checkup cancelled", row)
}
