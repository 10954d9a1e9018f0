package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSeatUnavailableError_EnumeratesAllSeats(t *testing.T) {
	err := SeatUnavailableError{Seats: []SeatRef{
		{RowID: 1, RowName: "A", SeatNumber: 2},
		{RowID: 3, RowName: "B", SeatNumber: 7},
	}}

	msg := err.Error()
	if !strings.Contains(msg, "row A seat 2") {
		t.Errorf("message missing first conflict: %s", msg)
	}
	if !strings.Contains(msg, "row B seat 7") {
		t.Errorf("message missing second conflict: %s", msg)
	}
}

func TestCreationFailedError_HidesCause(t *testing.T) {
	cause := errors.New("pq: connection reset on host db-internal-1")
	err := CreationFailedError{Err: cause}

	if strings.Contains(err.Error(), "db-internal-1") {
		t.Errorf("internal detail leaked: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("cause should still unwrap for logging")
	}
}

func TestTaxonomyHelpers(t *testing.T) {
	cases := []struct {
		err   error
		check func(error) bool
		want  bool
	}{
		{NotFoundError{Resource: "booking"}, IsNotFound, true},
		{fmt.Errorf("wrapped: %w", NotFoundError{Resource: "seat row"}), IsNotFound, true},
		{ValidationError{Field: "seats", Msg: "required"}, IsValidation, true},
		{ConflictError{Resource: "seat"}, IsConflict, true},
		{SeatUnavailableError{}, IsSeatUnavailable, true},
		{UploadError{}, IsUpload, true},
		{NotFoundError{}, IsConflict, false},
		{errors.New("plain"), IsNotFound, false},
	}
	for i, c := range cases {
		if got := c.check(c.err); got != c.want {
			t.Errorf("case %d: got %v, want %v", i, got, c.want)
		}
	}
}
