package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{NewPermissionDenied(""), CodePermissionDenied, http.StatusForbidden},
		{NewCategoryNotFound("cat-1"), CodeCategoryNotFound, http.StatusNotFound},
		{NewDuplicateTicket("ticket-bob-01011200"), CodeDuplicateTicket, http.StatusConflict},
		{NewMalformedPayload("bad body", nil), CodeMalformedPayload, http.StatusBadRequest},
		{NewConfirmationExpired(), CodeConfirmationExpired, http.StatusGone},
		{NewPlatformError("discord down", nil), CodePlatformError, http.StatusInternalServerError},
		{NewInternalError(errors.New("boom")), CodeInternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			domainErr := ToDomainError(tt.err)
			assert.Equal(t, tt.code, domainErr.Code)
			assert.Equal(t, tt.status, domainErr.HTTPStatus)
			assert.True(t, IsCode(tt.err, tt.code))
		})
	}
}

func TestDuplicateTicketDetails(t *testing.T) {
	domainErr := ToDomainError(NewDuplicateTicket("purchase-tess-03071452"))
	assert.Equal(t, "purchase-tess-03071452", domainErr.Details["channel"])
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("dial tcp refused")
	domainErr := ToDomainError(cause)

	assert.Equal(t, CodeInternalError, domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.ErrorIs(t, domainErr, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestToDomainErrorUnwrapsWrapped(t *testing.T) {
	wrapped := fmt.Errorf("opening ticket: %w", NewCategoryNotFound("cat-1"))
	domainErr := ToDomainError(wrapped)
	require.NotNil(t, domainErr)
	assert.Equal(t, CodeCategoryNotFound, domainErr.Code)
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := NewPlatformError("failed to delete channel", errors.New("permission missing"))
	assert.Equal(t, "failed to delete channel: permission missing", err.Error())
	assert.False(t, IsCode(errors.New("plain"), CodePlatformError))
}
