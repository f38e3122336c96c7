package spm_errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

const (
	CodeUniqueConstraint     = "23505"
	CodeForeignKeyConstraint = "23503"
)

var (
	ErrInternal            = errors.New("internal service error. please try again later")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("entity not found")
	ErrEntityAlreadyExist  = errors.New("entity with given key already exist")
	ErrPersistence         = errors.New("failed to persist data")
	ErrTransport           = errors.New("remote api unreachable after retries")
	ErrRemoteAPI           = errors.New("remote api returned an error")
	ErrMalformedResponse   = errors.New("remote api response is malformed")
	ErrCircuitOpen         = errors.New("remote api circuit is open")
	ErrQueueFull           = errors.New("background queue is full")
	ErrQueueStopped        = errors.New("background queue is stopped")
	ErrEmailServiceStopped = errors.New("email service is stopped currently")
	ErrEmailFailed         = errors.New("email could not be delivered")
	ErrInvalidSchedule     = errors.New("invalid cron expression")
)

// HandleDBErrors converts a store error into one of the sentinel errors above.
// errMsgs maps a pg error code to a map of constraint name -> user facing message.
func HandleDBErrors(
	err error,
	errMsgs map[string]map[string]string,
	contextMessage string,
) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		log.Error(fmt.Sprintf("%s, %v", contextMessage, ErrNotFound))
		return fmt.Errorf("%w, %s", ErrNotFound, contextMessage)
	}

	// already translated, most likely by the in-memory store
	if errors.Is(err, ErrEntityAlreadyExist) || errors.Is(err, ErrNotFound) {
		log.Error(fmt.Sprintf("%s, %v", contextMessage, err))
		return err
	}

	// assume its a persistence error first
	wrapped := fmt.Errorf(
		"%w, %s, %w",
		ErrPersistence,
		contextMessage,
		err,
	)

	// check if its a pg error
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		log.Error(wrapped)
		return wrapped
	}

	if pgErr.Code == CodeUniqueConstraint {
		msgUniqueConstraint, ok := errMsgs[CodeUniqueConstraint]
		if !ok {
			log.Warnf("no msg map found for unique key constraint.")
			return fmt.Errorf(
				"%w, %s",
				ErrEntityAlreadyExist,
				pgErr.Detail,
			)
		}
		return HandleUniqueKeyError(pgErr, msgUniqueConstraint)
	}

	if pgErr.Code == CodeForeignKeyConstraint {
		err := fmt.Errorf(
			"%w, %s",
			ErrInvalidRequest,
			pgErr.Detail,
		)
		log.Error(err)
		return err
	}

	// unknown error
	log.Error(wrapped)
	return wrapped
}

func HandleUniqueKeyError(pgErr *pgconn.PgError, msgUniqueConstraint map[string]string) error {
	msg, ok := msgUniqueConstraint[pgErr.ConstraintName]
	if !ok {
		log.Warnf(
			"unknown unique key violation, %s",
			pgErr.ConstraintName,
		)
		msg = pgErr.Detail
	}
	err := fmt.Errorf(
		"%w, %s",
		ErrEntityAlreadyExist,
		msg,
	)
	log.Error(err)
	return err
}

// WrapTransportError tags network level failures with ErrTransport and
// keeps the operation details of *net.OpError readable in logs.
func WrapTransportError(err error) error {
	var opError *net.OpError
	if errors.As(err, &opError) {
		return fmt.Errorf(
			"%w, \"%s\" error occurred during \"%s\" operation, network: %s, addr: %v",
			ErrTransport,
			opError.Error(),
			opError.Op,
			opError.Net,
			opError.Addr,
		)
	}

	return fmt.Errorf("%w, %w", ErrTransport, err)
}
