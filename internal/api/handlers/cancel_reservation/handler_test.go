package cancel_reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	cancelReservation "github.com/m04kA/SMC-ExamBookingService/internal/usecase/cancel_reservation"
	"github.com/m04kA/SMC-ExamBookingService/pkg/logger"
	"github.com/m04kA/SMC-ExamBookingService/pkg/ptr"
)

type fakeUseCase struct {
	got  *cancelReservation.Request
	resp *cancelReservation.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *cancelReservation.Request) (*cancelReservation.Response, error) {
	f.got = req
	return f.resp, f.err
}

func doDelete(uc CancelReservationUseCase, path string, principal *domain.Principal) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Handle("/api/v1/reservations/{reservationId}", http.HandlerFunc(NewHandler(uc, logger.Discard()).Handle)).Methods(http.MethodDelete)

	req := httptest.NewRequest(http.MethodDelete, path, nil)
	if principal != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), *principal))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Cancel(t *testing.T) {
	uc := &fakeUseCase{resp: &cancelReservation.Response{ReservationID: 5, EnrolmentID: ptr.Ptr(int64(9))}}

	rec := doDelete(uc, "/api/v1/reservations/5", &domain.Principal{UserID: 7, Role: domain.RoleAdmin})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), uc.got.ReservationID)
	assert.Equal(t, int64(7), uc.got.UserID)
	assert.True(t, uc.got.IsAdmin)

	var body CancelReservationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "cancelled", body.Status)
	require.NotNil(t, body.EnrolmentID)
	assert.Equal(t, int64(9), *body.EnrolmentID)
}

func TestHandler_Rejects(t *testing.T) {
	student := &domain.Principal{UserID: 7, Role: domain.RoleStudent}

	uc := &fakeUseCase{}
	rec := doDelete(uc, "/api/v1/reservations/5", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.got)

	rec = doDelete(uc, "/api/v1/reservations/x", student)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantReason string
	}{
		{cancelReservation.ErrInvalidInput, http.StatusBadRequest, handlers.ReasonInvalidRequest},
		{cancelReservation.ErrReservationNotFound, http.StatusNotFound, handlers.ReasonNotFound},
		{cancelReservation.ErrAccessDenied, http.StatusForbidden, handlers.ReasonForbidden},
		{cancelReservation.ErrCannotCancel, http.StatusForbidden, reasonCannotCancel},
		{fmt.Errorf("%w: timeout", cancelReservation.ErrPeerCancelFailed), http.StatusBadGateway, handlers.ReasonBadGateway},
		{errors.New("boom"), http.StatusInternalServerError, handlers.ReasonInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			uc := &fakeUseCase{err: tt.err}

			rec := doDelete(uc, "/api/v1/reservations/5", &domain.Principal{UserID: 7, Role: domain.RoleStudent})

			require.Equal(t, tt.wantStatus, rec.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantReason, body.Reason)
		})
	}
}
