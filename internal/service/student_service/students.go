package student_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/sync_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Create registers a student and queues the first sync in the background.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = service.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.CodeforcesHandle = strings.TrimSpace(req.CodeforcesHandle)

	if err := service.ValidateInput(req); err != nil {
		return Student{}, err
	}

	if err := s.checkConflict(ctx, uuid.NullUUID{}, req.Email, req.CodeforcesHandle); err != nil {
		return Student{}, err
	}

	dbStudent, err := s.DB.CreateStudent(ctx, database.CreateStudentParams{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		CodeforcesHandle: req.CodeforcesHandle,
	})
	if err != nil {
		return Student{}, spm_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot create student %s", req.CodeforcesHandle),
		)
	}
	s.logger.Infof("student %s created with id %v", dbStudent.CodeforcesHandle, dbStudent.ID)

	s.submitSync(dbStudent, sync_service.ReasonCreated)

	return s.toStudent(dbStudent), nil
}

// Update replaces the contact fields of a student. A changed handle queues
// a background sync, an email only change does not.
func (s *StudentService) Update(ctx context.Context, id uuid.UUID, req UpdateStudentRequest) (Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = service.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.CodeforcesHandle = strings.TrimSpace(req.CodeforcesHandle)

	if err := service.ValidateInput(req); err != nil {
		return Student{}, err
	}

	current, err := s.getActive(ctx, id)
	if err != nil {
		return Student{}, err
	}

	if req.Email != current.Email || req.CodeforcesHandle != current.CodeforcesHandle {
		self := uuid.NullUUID{UUID: id, Valid: true}
		if err = s.checkConflict(ctx, self, req.Email, req.CodeforcesHandle); err != nil {
			return Student{}, err
		}
	}

	autoEmail := current.AutoEmailEnabled
	if req.AutoEmailEnabled != nil {
		autoEmail = *req.AutoEmailEnabled
	}

	updated, err := s.DB.UpdateStudentContact(ctx, database.UpdateStudentContactParams{
		ID:               id,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		CodeforcesHandle: req.CodeforcesHandle,
		AutoEmailEnabled: autoEmail,
	})
	if err != nil {
		return Student{}, spm_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot update student %v", id),
		)
	}

	if updated.CodeforcesHandle != current.CodeforcesHandle {
		s.logger.Infof(
			"handle of student %v changed from %s to %s",
			id,
			current.CodeforcesHandle,
			updated.CodeforcesHandle,
		)
		s.submitSync(updated, sync_service.ReasonHandleChanged)
	}

	return s.toStudent(updated), nil
}

// Delete soft deletes a student. History stays in the store.
func (s *StudentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getActive(ctx, id); err != nil {
		return err
	}

	if err := s.DB.DeactivateStudent(ctx, id); err != nil {
		return spm_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot delete student %v", id))
	}
	s.logger.Infof("student %v deactivated", id)
	return nil
}

func (s *StudentService) Get(ctx context.Context, id uuid.UUID) (Student, error) {
	dbStudent, err := s.getActive(ctx, id)
	if err != nil {
		return Student{}, err
	}
	return s.toStudent(dbStudent), nil
}

// GetByHandle returns the active student with the given codeforces handle.
func (s *StudentService) GetByHandle(ctx context.Context, handle string) (Student, error) {
	dbStudent, err := s.DB.GetActiveStudentByHandle(ctx, strings.TrimSpace(handle))
	if err != nil {
		return Student{}, spm_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get student with handle %s", handle),
		)
	}
	return s.toStudent(dbStudent), nil
}

// List returns the active students, newest first.
func (s *StudentService) List(ctx context.Context) ([]Student, error) {
	dbStudents, err := s.DB.ListActiveStudents(ctx)
	if err != nil {
		return nil, spm_errors.HandleDBErrors(err, errMsgs, "cannot list students")
	}

	students := make([]Student, 0, len(dbStudents))
	for _, st := range dbStudents {
		students = append(students, s.toStudent(st))
	}
	return students, nil
}

func (s *StudentService) getActive(ctx context.Context, id uuid.UUID) (database.Student, error) {
	dbStudent, err := s.DB.GetStudentByID(ctx, id)
	if err != nil {
		return database.Student{}, spm_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot get student %v", id),
		)
	}
	if !dbStudent.IsActive {
		return database.Student{}, fmt.Errorf("%w, student %v is deleted", spm_errors.ErrNotFound, id)
	}
	return dbStudent, nil
}

func (s *StudentService) checkConflict(ctx context.Context, self uuid.NullUUID, email, handle string) error {
	_, err := s.DB.FindActiveStudentConflict(ctx, database.FindActiveStudentConflictParams{
		ExcludeID:        self,
		Email:            email,
		CodeforcesHandle: handle,
	})
	if err == nil {
		return fmt.Errorf(
			"%w, student with this email or codeforces handle already exists",
			spm_errors.ErrEntityAlreadyExist,
		)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return spm_errors.HandleDBErrors(err, errMsgs, "cannot check for existing students")
}

// the caller never waits on the sync, a rejected task is only logged
func (s *StudentService) submitSync(st database.Student, reason sync_service.TaskReason) {
	task, err := s.Queue.Submit(st.ID, st.CodeforcesHandle, reason)
	if err != nil {
		s.logger.Errorf("cannot queue background sync of %s, %v", st.CodeforcesHandle, err)
		return
	}
	s.logger.Debugf("queued background sync %v", task)
}
