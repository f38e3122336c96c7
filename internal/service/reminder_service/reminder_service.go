package reminder_service

import (
	"context"
	"fmt"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/metrics"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/sirupsen/logrus"
)

const (
	reminderServiceName   = "reminder_service"
	defaultInactivityDays = 7
)

type ReminderSender interface {
	SendReminder(ctx context.Context, student database.Student) error
}

type ReminderService struct {
	DB             database.Querier
	Sender         ReminderSender
	Pacing         time.Duration
	InactivityDays int
	Now            func() time.Time
	logger         *logrus.Entry
}

type InactivityResult struct {
	TotalInactive int `json:"totalInactive"`
	EmailsSent    int `json:"emailsSent"`
}

func (r *ReminderService) Start() {
	for _, field := range []struct {
		field any
		name  string
	}{
		{r.DB, "database"}, {r.Sender, "reminder sender"},
	} {
		if field.field == nil {
			panic(fmt.Sprintf("reminder service expects non-nil %v", field.name))
		}
	}

	if r.Now == nil {
		r.Now = time.Now
	}
	if r.InactivityDays <= 0 {
		r.InactivityDays = defaultInactivityDays
	}

	r.logger = logrus.WithFields(
		logrus.Fields{
			"from": reminderServiceName,
		},
	)
}

// CheckInactive mails every active, auto-email enabled student whose last
// accepted submission is missing or older than InactivityDays. Only a
// delivered reminder increments the reminder count. Failed sends are not
// retried within the scan.
func (r *ReminderService) CheckInactive(ctx context.Context) (InactivityResult, error) {
	cutoff := r.Now().AddDate(0, 0, -r.InactivityDays)
	students, err := r.DB.ListReminderCandidates(ctx, cutoff)
	if err != nil {
		err = spm_errors.HandleDBErrors(err, nil, "cannot list inactive students")
		return InactivityResult{}, err
	}
	r.logger.Infof("found %d inactive students", len(students))

	res := InactivityResult{TotalInactive: len(students)}
	for i, student := range students {
		if i > 0 {
			if err = service.Pause(ctx, r.Pacing); err != nil {
				r.logger.Warnf("inactivity scan interrupted after %d students, %v", i, err)
				return res, fmt.Errorf("inactivity scan interrupted, %w", err)
			}
		}
		if r.remind(ctx, student) {
			res.EmailsSent++
		}
	}

	r.logger.Infof("sent %d reminder emails", res.EmailsSent)
	return res, nil
}

func (r *ReminderService) remind(ctx context.Context, student database.Student) bool {
	logger := r.logger.WithFields(logrus.Fields{
		"student_id": student.ID,
		"handle":     student.CodeforcesHandle,
	})

	if err := r.Sender.SendReminder(ctx, student); err != nil {
		metrics.Reminders.WithLabelValues("failure").Inc()
		logger.Errorf("failed to send reminder to %s, %v", student.Email, err)
		return false
	}
	metrics.Reminders.WithLabelValues("sent").Inc()

	if err := r.DB.IncrementReminderCount(ctx, student.ID); err != nil {
		// the mail is out, count it as sent regardless
		logger.Error(spm_errors.HandleDBErrors(err, nil, "cannot increment reminder count"))
	}
	logger.Infof("reminder email sent to %s", student.Email)
	return true
}
