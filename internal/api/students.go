package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/student_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	log "github.com/sirupsen/logrus"
)

func (a *Api) HandlerListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := a.StudentServiceConfig.List(r.Context())
	if err != nil {
		handlerError(err, w, "Failed to fetch students")
		return
	}
	respond(w, http.StatusOK, "", students)
}

func (a *Api) HandlerCreateStudent(w http.ResponseWriter, r *http.Request) {
	var request student_service.CreateStudentRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidPayload, err)
		return
	}

	student, err := a.StudentServiceConfig.Create(r.Context(), request)
	if err != nil {
		handlerError(err, w, "Failed to create student")
		return
	}

	log.WithFields(log.Fields{
		"student_id": student.ID,
		"handle":     student.CodeforcesHandle,
	}).Info("student created")
	respond(w, http.StatusCreated, "Student created successfully", student)
}

func (a *Api) HandlerGetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := studentIdParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidStudentId, err)
		return
	}

	student, err := a.StudentServiceConfig.Get(r.Context(), id)
	if err != nil {
		handlerError(err, w, "Failed to fetch student")
		return
	}
	respond(w, http.StatusOK, "", student)
}

func (a *Api) HandlerUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := studentIdParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidStudentId, err)
		return
	}

	var request student_service.UpdateStudentRequest
	if err = decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidPayload, err)
		return
	}

	student, err := a.StudentServiceConfig.Update(r.Context(), id, request)
	if err != nil {
		handlerError(err, w, "Failed to update student")
		return
	}
	respond(w, http.StatusOK, "Student updated successfully", student)
}

func (a *Api) HandlerDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := studentIdParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidStudentId, err)
		return
	}

	if err = a.StudentServiceConfig.Delete(r.Context(), id); err != nil {
		handlerError(err, w, "Failed to delete student")
		return
	}
	respond(w, http.StatusOK, "Student deleted successfully", nil)
}

func (a *Api) HandlerGetStudentData(w http.ResponseWriter, r *http.Request) {
	id, err := studentIdParam(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidStudentId, err)
		return
	}

	request := student_service.AnalyticsRequest{}
	if request.ContestDays, err = intQuery(r, "contestDays"); err != nil {
		respondWithError(w, http.StatusBadRequest, msgValidation, err)
		return
	}
	if request.ProblemDays, err = intQuery(r, "problemDays"); err != nil {
		respondWithError(w, http.StatusBadRequest, msgValidation, err)
		return
	}

	data, err := a.StudentServiceConfig.Analytics(r.Context(), id, request)
	if err != nil {
		handlerError(err, w, "Failed to fetch student data")
		return
	}
	respond(w, http.StatusOK, "", data)
}

func (a *Api) HandlerExportStudents(w http.ResponseWriter, r *http.Request) {
	// buffer so a failure can still be reported as json
	var buf bytes.Buffer
	if err := a.StudentServiceConfig.ExportCSV(r.Context(), &buf); err != nil {
		handlerError(err, w, "Failed to export CSV")
		return
	}

	filename := fmt.Sprintf("students_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Errorf("cannot write csv export, %v", err)
	}
}

// intQuery returns 0 for a missing parameter, the service applies defaults
func intQuery(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w, %s must be an integer", spm_errors.ErrInvalidInput, key)
	}
	return v, nil
}
