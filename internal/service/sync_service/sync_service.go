package sync_service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

func (s *SyncService) Start() {
	// validate fields
	for _, field := range []struct {
		field any
		name  string
	}{
		{s.DB, "database"}, {s.CF, "codeforces client"},
	} {
		if field.field == nil {
			panic(fmt.Sprintf("sync service expects non-nil %v", field.name))
		}
	}

	if s.Now == nil {
		s.Now = time.Now
	}
	if s.SubmissionFetchCount <= 0 {
		s.SubmissionFetchCount = defaultSubmissionFetchCount
	}
	if s.DefaultProblemRating <= 0 {
		s.DefaultProblemRating = defaultProblemRating
	}

	s.logger = logrus.WithFields(
		logrus.Fields{
			"from": syncServiceName,
		},
	)
	s.logger.Infof(
		"sync service started, fleet pacing %v, submission fetch count %d",
		s.FleetPacing,
		s.SubmissionFetchCount,
	)
}
