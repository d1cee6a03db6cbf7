package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/service"
)

func TestRenderServiceErr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantKind    string
		wantMessage string
	}{
		{"event not found", fmt.Errorf("s.repo.FindByCode -> %w", service.ErrEventNotFound), http.StatusNotFound, "not_found", "event not found"},
		{"run not found", service.ErrRunNotFound, http.StatusNotFound, "not_found", ""},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "forbidden", ""},
		{"duplicate code", service.ErrEventCodeExists, http.StatusConflict, "conflict", ""},
		{"double submit", service.ErrResultAlreadySubmitted, http.StatusConflict, "conflict", ""},
		{
			"state refusal", &service.StateError{Err: service.ErrResultNotAccepted, State: domain.StateDraft},
			http.StatusConflict, "conflict", "event is not accepting results (current: draft)",
		},
		{"bad transition", fmt.Errorf("%w: pause from active", domain.ErrInvalidTransition), http.StatusConflict, "conflict", ""},
		{"bad action", domain.ErrInvalidAction, http.StatusBadRequest, "validation_failed", ""},
		{"token expired", service.ErrTokenExpired, http.StatusUnauthorized, "token_expired", ""},
		{"token mismatch", service.ErrTokenEventMismatch, http.StatusUnauthorized, "token_event_mismatch", ""},
		{"token invalid", service.ErrTokenInvalid, http.StatusUnauthorized, "token_invalid", ""},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError, "internal", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(rec)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			renderServiceErr(ctx, "op", tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body["error"])
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, body["message"])
			}
		})
	}
}
