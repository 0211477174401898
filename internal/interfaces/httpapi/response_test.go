package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/usecase"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err        error
		wantStatus int
		wantReason string
	}{
		{fmt.Errorf("%w: bad id", usecase.ErrInvalidInput), http.StatusBadRequest, "invalidInput"},
		{match.ErrUnknownSource, http.StatusBadRequest, "invalidInput"},
		{fmt.Errorf("%w: team 9", usecase.ErrNotFound), http.StatusNotFound, "notFound"},
		{usecase.ErrExternalMatchNotFound, http.StatusNotFound, "notFound"},
		{match.ErrNotFound, http.StatusNotFound, "notFound"},
		{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{match.ErrDuplicateExternalID, http.StatusConflict, "duplicateExternalId"},
		{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internalError"},
	}

	for _, tc := range cases {
		mapped := mapError(context.Background(), tc.err)
		if mapped.HTTPStatus != tc.wantStatus || mapped.Reason != tc.wantReason {
			t.Fatalf("mapError(%v): got=%+v want status=%d reason=%s", tc.err, mapped, tc.wantStatus, tc.wantReason)
		}
	}
}
