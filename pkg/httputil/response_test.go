package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testforge/hrm-e2e/internal/domain"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestErrorFromDomain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"validation", domain.ErrValidationField("scenario", "no match"), http.StatusBadRequest, domain.ErrCodeValidation},
		{"unsupported engine", domain.ErrUnsupportedEngine("opera"), http.StatusBadRequest, domain.ErrCodeUnsupportedEngine},
		{"browser failure", domain.ErrNavigation("https://hrm.example.test", errors.New("refused")), http.StatusInternalServerError, domain.ErrCodeNavigation},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, domain.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorFromDomain(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(ErrCodeNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(ErrCodeConflict))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(ErrCodeUnauthorized))
	assert.Equal(t, http.StatusTooManyRequests, StatusFor(ErrCodeRateLimited))
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Scenarios []string `json:"scenarios"`
	}

	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"valid", `{"scenarios":["admin/*"]}`, []string{"admin/*"}, false},
		{"empty", ``, nil, false},
		{"unknown field", `{"engine":"opera"}`, nil, true},
		{"malformed", `{"scenarios":`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.input))
			var got body
			err := DecodeJSON(req, &got)
			if tt.wantErr {
				assert.Equal(t, domain.ErrCodeValidation, domain.GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Scenarios)
		})
	}
}
