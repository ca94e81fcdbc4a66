package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeInvalidPrompt, http.StatusBadRequest},
		{CodeProviderUnavailable, http.StatusServiceUnavailable},
		{CodeProcessing, http.StatusInternalServerError},
		{CodeAdventureNotFound, http.StatusNotFound},
		{CodeInvalidRequest, http.StatusBadRequest},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tc := range tests {
		require.Equal(t, tc.status, StatusFor(tc.code), tc.code)
	}
}

func TestProviderUnavailableCarriesCause(t *testing.T) {
	cause := errors.New("status=502 body=bad gateway")
	err := ProviderUnavailable(cause)

	require.True(t, IsCode(err, CodeProviderUnavailable))
	require.ErrorIs(t, err, cause)
	appErr, ok := As(err)
	require.True(t, ok)
	require.Contains(t, appErr.Message, "bad gateway")
	require.Equal(t, http.StatusServiceUnavailable, appErr.Status())
}

func TestAsFindsWrappedAppError(t *testing.T) {
	err := fmt.Errorf("outer: %w", AdventureNotFound(42))

	appErr, ok := As(err)
	require.True(t, ok)
	require.Equal(t, CodeAdventureNotFound, appErr.Code)
	require.Equal(t, "adventure with id 42 not found", appErr.Message)

	_, ok = As(errors.New("plain"))
	require.False(t, ok)
}
