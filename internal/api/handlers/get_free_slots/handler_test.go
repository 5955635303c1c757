package get_free_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getFreeSlots "github.com/m04kA/SMC-ExamBookingService/internal/usecase/get_free_slots"
	"github.com/m04kA/SMC-ExamBookingService/pkg/logger"
)

type fakeUseCase struct {
	got *getFreeSlots.Request
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getFreeSlots.Request) (*getFreeSlots.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	return &getFreeSlots.Response{
		RoomID:   req.RoomID,
		Date:     "2026-03-02",
		Timezone: "UTC",
		Slots: []getFreeSlots.Slot{
			{Start: start, End: start.Add(time.Hour), StartTime: "09:00", EndTime: "10:00"},
		},
	}, nil
}

func get(uc GetFreeSlotsUseCase, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/rooms/{roomId}/free-slots", NewHandler(uc, logger.Discard()).Handle).Methods(http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_FreeSlots(t *testing.T) {
	uc := &fakeUseCase{}

	rec := get(uc, "/api/v1/rooms/4/free-slots?date=2026-03-02")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), uc.got.RoomID)

	var body FreeSlotsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Slots, 1)
	assert.Equal(t, "09:00", body.Slots[0].StartTime)
	assert.Equal(t, "2026-03-02T10:00:00Z", body.Slots[0].End)
}

func TestHandler_FreeSlots_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{name: "bad room id", path: "/api/v1/rooms/x/free-slots?date=2026-03-02", want: http.StatusBadRequest},
		{name: "missing date", path: "/api/v1/rooms/4/free-slots", want: http.StatusBadRequest},
		{name: "bad date", path: "/api/v1/rooms/4/free-slots?date=02.03.2026", want: http.StatusBadRequest},
		{name: "room not found", path: "/api/v1/rooms/4/free-slots?date=2026-03-02", err: getFreeSlots.ErrRoomNotFound, want: http.StatusNotFound},
		{name: "internal", path: "/api/v1/rooms/4/free-slots?date=2026-03-02", err: getFreeSlots.ErrInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(&fakeUseCase{err: tt.err}, tt.path)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
