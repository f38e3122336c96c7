package main

import (
	"github.com/go-chi/chi/v5"
)

func NewV1Router() *chi.Mux {
	v1 := chi.NewRouter()

	// configure all endpoints
	v1.Get("/healthz", apiConfig.HandlerHealthz)

	// students layer
	v1.Get("/students", apiConfig.HandlerListStudents)
	v1.Post("/students", apiConfig.HandlerCreateStudent)
	v1.Get("/students/export/csv", apiConfig.HandlerExportStudents)
	v1.Get("/students/{id}", apiConfig.HandlerGetStudent)
	v1.Put("/students/{id}", apiConfig.HandlerUpdateStudent)
	v1.Delete("/students/{id}", apiConfig.HandlerDeleteStudent)
	v1.Get("/students/{id}/data", apiConfig.HandlerGetStudentData)

	// sync layer
	v1.Post("/sync/cf/{handle}", apiConfig.HandlerSyncStudent)
	v1.Post("/sync/all", apiConfig.HandlerSyncAll)
	v1.Get("/sync/status/{id}", apiConfig.HandlerSyncStatus)

	// cron layer
	v1.Get("/cron/schedule", apiConfig.HandlerGetSchedule)
	v1.Post("/cron/update", apiConfig.HandlerUpdateSchedule)
	v1.Post("/cron/run", apiConfig.HandlerRunSchedule)

	// reminders
	v1.Post("/reminders/check", apiConfig.HandlerCheckInactive)

	return v1
}
