package model

import (
	"errors"
	"fmt"
	"strings"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field != "" && e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Resource != "" && e.Msg != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// SeatRef names one (row, seat number) pair in error messages.
type SeatRef struct {
	RowID      uint
	RowName    string
	SeatNumber uint
}

func (s SeatRef) String() string {
	if s.RowName != "" {
		return fmt.Sprintf("row %s seat %d", s.RowName, s.SeatNumber)
	}
	return fmt.Sprintf("row #%d seat %d", s.RowID, s.SeatNumber)
}

// SeatUnavailableError reports every conflicting seat of a booking attempt,
// not just the first one.
type SeatUnavailableError struct {
	Seats []SeatRef
}

func (e SeatUnavailableError) Error() string {
	if len(e.Seats) == 0 {
		return "seat unavailable"
	}
	parts := make([]string, 0, len(e.Seats))
	for _, s := range e.Seats {
		parts = append(parts, s.String())
	}
	return "seats unavailable: " + strings.Join(parts, ", ")
}

// UploadError marks a failed receipt upload. During booking creation it is
// logged and swallowed, the booking proceeds without a receipt.
type UploadError struct {
	Err error
}

func (e UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	return "upload failed"
}

func (e UploadError) Unwrap() error { return e.Err }

// CreationFailedError hides unexpected persistence failures behind a generic
// message so internal detail never reaches the caller.
type CreationFailedError struct {
	Err error
}

func (e CreationFailedError) Error() string { return "booking could not be created" }

func (e CreationFailedError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsSeatUnavailable(err error) bool {
	var target SeatUnavailableError
	return errors.As(err, &target)
}

func IsUpload(err error) bool {
	var target UploadError
	return errors.As(err, &target)
}
