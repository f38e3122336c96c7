package api

import (
	"context"
	"net/http"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/scheduler_service"
)

func (a *Api) HandlerGetSchedule(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "", a.SchedulerServiceConfig.GetSchedule())
}

func (a *Api) HandlerUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var request scheduler_service.UpdateScheduleRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidPayload, err)
		return
	}
	if err := service.ValidateInput(request); err != nil {
		message := "Invalid cron expression"
		if request.Schedule == "" {
			message = "Schedule is required"
		}
		respondWithError(w, http.StatusBadRequest, message, err)
		return
	}

	info, err := a.SchedulerServiceConfig.SetSchedule(request.Schedule)
	if err != nil {
		handlerError(err, w, "Invalid cron expression")
		return
	}
	respond(w, http.StatusOK, "Cron schedule updated successfully", info)
}

func (a *Api) HandlerRunSchedule(w http.ResponseWriter, r *http.Request) {
	result, err := a.SchedulerServiceConfig.RunNow(context.WithoutCancel(r.Context()))
	if err != nil {
		handlerError(err, w, "Scheduled job failed")
		return
	}
	respond(w, http.StatusOK, "Scheduled job completed", result)
}
