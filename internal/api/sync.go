package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

func (a *Api) HandlerSyncStudent(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	student, err := a.StudentServiceConfig.GetByHandle(r.Context(), handle)
	if err != nil {
		handlerError(err, w, "Failed to sync student data")
		return
	}

	// a started sync outlives the request
	outcome, err := a.SyncServiceConfig.SyncOne(
		context.WithoutCancel(r.Context()),
		student.ID,
		student.CodeforcesHandle,
	)
	if err != nil {
		handlerError(err, w, "Failed to sync student data")
		return
	}
	respond(w, http.StatusOK, "Student data synced successfully", outcome)
}

func (a *Api) HandlerSyncAll(w http.ResponseWriter, r *http.Request) {
	summary, err := a.SyncServiceConfig.SyncAll(context.WithoutCancel(r.Context()))
	if err != nil {
		handlerError(err, w, "Failed to sync all students")
		return
	}

	log.WithFields(log.Fields{
		"total":  summary.Total,
		"failed": summary.Failed,
	}).Info("fleet sync requested over http completed")
	respond(w, http.StatusOK, "All students synced successfully", summary)
}

func (a *Api) HandlerSyncStatus(w http.ResponseWriter, r *http.Request) {
	id, err := studentIdParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidStudentId, err)
		return
	}

	status, err := a.StudentServiceConfig.Status(r.Context(), id)
	if err != nil {
		handlerError(err, w, "Failed to get sync status")
		return
	}
	respond(w, http.StatusOK, "", status)
}

func (a *Api) HandlerCheckInactive(w http.ResponseWriter, r *http.Request) {
	result, err := a.ReminderServiceConfig.CheckInactive(context.WithoutCancel(r.Context()))
	if err != nil {
		handlerError(err, w, "Failed to check inactive students")
		return
	}
	respond(w, http.StatusOK, "Inactivity check completed", result)
}
