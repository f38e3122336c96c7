package api

import (
	"net/http"
	"time"
)

func (a *Api) HandlerHealthz(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	respond(w, http.StatusOK, "", healthResponse{
		Status:    "OK",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(a.StartTime).Seconds(),
	})
}
