package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMapToStatus(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		kind   Kind
	}{
		{Validation("bad"), http.StatusUnprocessableEntity, KindValidation},
		{NotFound("nope"), http.StatusNotFound, KindNotFound},
		{Unauthenticated(""), http.StatusUnauthorized, KindUnauthenticated},
		{NotOwner("not yours"), http.StatusNotFound, KindForbidden},
		{Conflict("dup"), http.StatusConflict, KindConflict},
		{BadRequest("bad"), http.StatusBadRequest, KindBadRequest},
		{Internal("", errors.New("db down")), http.StatusInternalServerError, KindInternal},
	}
	for _, tc := range cases {
		status, _ := Status(tc.err)
		assert.Equal(t, tc.status, status)
		assert.True(t, Is(tc.err, tc.kind))
	}
}

func TestDefaultMessages(t *testing.T) {
	assert.Equal(t, MsgUnauthenticated, Unauthenticated("").Msg)
	assert.Equal(t, MsgUnknown, Internal("", nil).Msg)
}

func TestWrapKeepsAppError(t *testing.T) {
	nf := NotFound("No such recipe exists!")
	wrapped := fmt.Errorf("toggle: %w", nf)

	got := Wrap(wrapped, "Can't update the like value, please try again!")
	status, msg := Status(got)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No such recipe exists!", msg)
}

func TestWrapPlainErrorBecomesInternal(t *testing.T) {
	cause := errors.New("deadlock")
	got := Wrap(cause, "Can't update the like value, please try again!")

	status, msg := Status(got)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Can't update the like value, please try again!", msg)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, Wrap(nil, "x"))
}

func TestUnknownErrorStatus(t *testing.T) {
	status, msg := Status(errors.New("whatever"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgUnknown, msg)
}
