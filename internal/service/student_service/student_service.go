package student_service

import (
	"time"

	"github.com/sirupsen/logrus"
)

func (s *StudentService) Start() {
	if s.DB == nil {
		panic("student service expects non-nil database")
	}
	if s.Queue == nil {
		panic("student service expects non-nil background syncer")
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.InactivityDays <= 0 {
		s.InactivityDays = defaultInactivityDays
	}

	s.logger = logrus.WithFields(
		logrus.Fields{
			"from": studentServiceName,
		},
	)
}
