package httpx

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/em-sphere/emsphere/internal/shared"
)

func TestRespondErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{shared.ErrNotFound, 404},
		{shared.ErrInvalidCredentials, 401},
		{shared.ErrEmailTaken, 409},
		{shared.ErrCSRFTokenMissing, 403},
		{shared.ErrCSRFTokenMismatch, 403},
		{errors.New("boom"), 500},
	}
	for _, tc := range cases {
		res := httptest.NewRecorder()
		RespondError(res, tc.err)
		if res.Code != tc.status {
			t.Fatalf("%v: expected %d got %d", tc.err, tc.status, res.Code)
		}
		var problem ProblemDetail
		if err := json.Unmarshal(res.Body.Bytes(), &problem); err != nil {
			t.Fatalf("decode problem: %v", err)
		}
		if problem.Status != tc.status {
			t.Fatalf("%v: body status %d does not match %d", tc.err, problem.Status, tc.status)
		}
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	res := httptest.NewRecorder()
	RespondError(res, errors.New("secret db detail"))
	var problem ProblemDetail
	if err := json.Unmarshal(res.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if problem.Detail != "" {
		t.Fatalf("internal error detail must be suppressed, got %q", problem.Detail)
	}
}
