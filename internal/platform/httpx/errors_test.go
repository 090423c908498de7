package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("get: %w", shared.ErrNotFound), http.StatusNotFound},
		{shared.ErrDuplicate, http.StatusConflict},
		{shared.ErrForbidden, http.StatusForbidden},
		{shared.NewValidationError("amount", "Valor inválido."), http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code)
		require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, tc.status, body.Status)
		if tc.status == http.StatusInternalServerError {
			require.Empty(t, body.Detail)
		}
	}
}
