package api

import (
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/reminder_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/scheduler_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/student_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/sync_service"
)

const (
	msgInvalidStudentId = "Invalid student id"
	msgValidation       = "Validation error"
	msgInvalidPayload   = "Invalid request payload"
)

type Api struct {
	StudentServiceConfig   *student_service.StudentService
	SyncServiceConfig      *sync_service.SyncService
	ReminderServiceConfig  *reminder_service.ReminderService
	SchedulerServiceConfig *scheduler_service.Scheduler
	StartTime              time.Time
}

// response is the envelope of every json response
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}
