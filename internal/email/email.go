package email

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type EmailPurpose string
type EmailBodyType string

const (
	KeyEmailFrom                              = "From"
	KeyEmailTo                                = "To"
	KeyEmailSubject                           = "Subject"
	KeyEmailBodyPlain           EmailBodyType = "text/plain"
	KeyEmailBodyHTML            EmailBodyType = "text/html"
	PurposeInactivityReminder   EmailPurpose  = "inactivity_reminder"
	defaultEmailChannelCapacity               = 100
)

// Dialer delivers messages, *gomail.Dialer is the production one.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailRequest struct {
	To       []string
	Subject  string
	Body     string
	BodyType EmailBodyType
	Purpose  EmailPurpose
}

type emailJob struct {
	EmailRequest
	from   string
	result chan error
}

type EmailService struct {
	Dialer  Dialer
	Sender  string
	Workers int

	emailChan chan emailJob
	// guards emailChan against a send after close
	stateLock sync.RWMutex
	stopped   bool
	wg        sync.WaitGroup
	logger    *logrus.Entry
}

// NewSMTPDialer returns a gomail dialer for host:port authenticating as sender.
func NewSMTPDialer(host string, port int, sender, password string) *gomail.Dialer {
	return gomail.NewDialer(host, port, sender, password)
}

func (e *EmailService) Start() {
	e.logger = logrus.WithField("from", "email service")

	if e.Sender == "" || e.Dialer == nil {
		e.logger.Warn("sender email is not configured, emails will not be sent")
		e.stopped = true
		return
	}
	if e.Workers < 1 {
		e.Workers = 1
	}

	e.emailChan = make(chan emailJob, defaultEmailChannelCapacity)
	e.StartEmailWorkers(e.Workers)
}

// StartEmailWorkers launches n goroutines draining the email channel.
func (e *EmailService) StartEmailWorkers(n int) {
	e.logger.Infof("starting %d email workers", n)
	for i := range n {
		e.wg.Add(1)
		go e.worker(i)
	}
}

// NewMail queues a mail and waits until a worker has tried to deliver it.
func (e *EmailService) NewMail(ctx context.Context, req EmailRequest) error {
	job := emailJob{
		from:         e.Sender,
		EmailRequest: req,
		result:       make(chan error, 1),
	}

	e.stateLock.RLock()
	if e.stopped {
		e.stateLock.RUnlock()
		return spm_errors.ErrEmailServiceStopped
	}

	// when all the workers are dead, it shouldn't block indefinetely
	select {
	case <-ctx.Done():
		e.stateLock.RUnlock()
		e.logger.Errorf("email job cancelled: %v", ctx.Err())
		return errors.Join(spm_errors.ErrEmailServiceStopped, ctx.Err())
	case e.emailChan <- job:
	}
	e.stateLock.RUnlock()

	select {
	case <-ctx.Done():
		e.logger.Errorf("gave up waiting for %v email: %v", req.Purpose, ctx.Err())
		return errors.Join(spm_errors.ErrEmailFailed, ctx.Err())
	case err := <-job.result:
		return err
	}
}

// Stop lets the workers finish the queued mails and waits for them.
func (e *EmailService) Stop() {
	e.stateLock.Lock()
	if e.stopped {
		e.stateLock.Unlock()
		return
	}
	e.stopped = true
	close(e.emailChan)
	e.stateLock.Unlock()

	e.wg.Wait()
	e.logger.Info("email workers stopped")
}

func (e *EmailService) worker(id int) {
	defer e.wg.Done()
	workerLogger := e.logger.WithField("worker", id)

	for job := range e.emailChan {
		err := e.deliver(job)
		if err != nil {
			workerLogger.Errorf("cannot send %v email to %v, %v", job.Purpose, job.To, err)
		} else {
			workerLogger.Infof("sent %v email to %v", job.Purpose, job.To)
		}
		job.result <- err
	}
}

func (e *EmailService) deliver(job emailJob) error {
	m := gomail.NewMessage()
	m.SetHeader(KeyEmailFrom, job.from)
	m.SetHeader(KeyEmailTo, job.To...)
	m.SetHeader(KeyEmailSubject, job.Subject)
	bodyType := job.BodyType
	if bodyType == "" {
		bodyType = KeyEmailBodyPlain
	}
	m.SetBody(string(bodyType), job.Body)

	if err := e.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w, %w", spm_errors.ErrEmailFailed, err)
	}
	return nil
}
