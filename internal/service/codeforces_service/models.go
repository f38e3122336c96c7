package codeforces_service

import (
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	StatusOK = "OK"

	VerdictAccepted = "OK"

	methodUserInfo   = "user.info"
	methodUserRating = "user.rating"
	methodUserStatus = "user.status"
)

type Config struct {
	BaseURL            string
	MaxAttempts        int
	RetryBaseDelay     time.Duration
	RequestTimeout     time.Duration
	MinRequestInterval time.Duration // 0 disables client side pacing
	BreakerFailures    int           // 0 disables the circuit breaker
	BreakerCooldown    time.Duration
}

type Client struct {
	baseURL        *url.URL
	maxAttempts    int
	retryBaseDelay time.Duration
	requestTimeout time.Duration
	httpClient     httpDoer
	limiter        *rate.Limiter
	cb             *gobreaker.CircuitBreaker[[]byte]
	logger         *logrus.Entry
}

// every codeforces api response is wrapped in this envelope
type envelope[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  T      `json:"result"`
}

type User struct {
	Handle    string `json:"handle"`
	Rating    int32  `json:"rating"`
	MaxRating int32  `json:"maxRating"`
	Rank      string `json:"rank"`
	MaxRank   string `json:"maxRank"`
}

type RatingChange struct {
	ContestID               int64  `json:"contestId"`
	ContestName             string `json:"contestName"`
	Handle                  string `json:"handle"`
	Rank                    int32  `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int32  `json:"oldRating"`
	NewRating               int32  `json:"newRating"`
}

type Problem struct {
	ContestID      *int64   `json:"contestId"`
	ProblemsetName string   `json:"problemsetName"`
	Index          string   `json:"index"`
	Name           string   `json:"name"`
	Rating         int32    `json:"rating"`
	Tags           []string `json:"tags"`
}

type Submission struct {
	ID                  int64   `json:"id"`
	ContestID           *int64  `json:"contestId"`
	CreationTimeSeconds int64   `json:"creationTimeSeconds"`
	Problem             Problem `json:"problem"`
	ProgrammingLanguage string  `json:"programmingLanguage"`
	Verdict             string  `json:"verdict"`
}
