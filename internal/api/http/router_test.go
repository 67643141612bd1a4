package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mocks struct {
	rooms   *service.MockRoomInteractor
	setups  *service.MockSetupInteractor
	sweeper *service.MockSweepInteractor
}

func newTestRouter(opts RouterOptions) (*gin.Engine, mocks) {
	m := mocks{
		rooms:   new(service.MockRoomInteractor),
		setups:  new(service.MockSetupInteractor),
		sweeper: new(service.MockSweepInteractor),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return SetupRouter(NewGuildController(m.rooms, m.setups, m.sweeper), opts, log), m
}

func do(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(RouterOptions{})

	rec := do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGetSetup(t *testing.T) {
	tcases := []struct {
		name   string
		status *service.SetupStatus
		err    error
		code   int
		body   string
	}{
		{
			name: "valid",
			status: &service.SetupStatus{Valid: true, Setup: &domain.GuildSetup{
				CategoryID:         "10",
				CreatorChannelID:   "11",
				InterfaceChannelID: "12",
				InterfaceMessageID: "13",
				Variant:            domain.VariantStandard,
			}},
			code: http.StatusOK,
			body: `{"setup":{"valid":true,"category_id":"10","creator_channel_id":"11",
				"interface_channel_id":"12","interface_message_id":"13","variant":"standard"}}`,
		},
		{
			name:   "invalidated",
			status: &service.SetupStatus{Reason: service.ReasonCreatorMissing, Setup: &domain.GuildSetup{CategoryID: "10"}},
			code:   http.StatusOK,
			body:   `{"setup":{"valid":false,"reason":"creator channel missing"}}`,
		},
		{
			name: "platform down",
			err:  fmt.Errorf("validate: %w", domain.ErrPlatformUnavailable),
			code: http.StatusBadGateway,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			r, m := newTestRouter(RouterOptions{})
			m.setups.On("Validate", mock.Anything, "42").Return(tc.status, tc.err)

			rec := do(r, http.MethodGet, "/api/guilds/42/setup", nil)
			assert.Equal(t, tc.code, rec.Code)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestInvalidGuildID(t *testing.T) {
	r, m := newTestRouter(RouterOptions{})

	rec := do(r, http.MethodGet, "/api/guilds/abc/rooms", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.rooms.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListRooms(t *testing.T) {
	r, m := newTestRouter(RouterOptions{})
	room := domain.NewRoom("500", "42", "100")
	room.Policy.Block("200")
	m.rooms.On("List", mock.Anything, "42").Return([]*domain.Room{room}, nil)

	rec := do(r, http.MethodGet, "/api/guilds/42/rooms", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rooms []struct {
			ID      string   `json:"id"`
			OwnerID string   `json:"owner_id"`
			Trusted []string `json:"trusted"`
			Blocked []string `json:"blocked"`
		} `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "500", body.Rooms[0].ID)
	assert.Equal(t, "100", body.Rooms[0].OwnerID)
	assert.Equal(t, []string{}, body.Rooms[0].Trusted)
	assert.Equal(t, []string{"200"}, body.Rooms[0].Blocked)
}

func TestSweep(t *testing.T) {
	r, m := newTestRouter(RouterOptions{})
	m.sweeper.On("Sweep", mock.Anything, "42").Return(service.SweepReport{Checked: 3, Purged: 1}, nil).Once()
	m.sweeper.On("Sweep", mock.Anything, "42").Return(service.SweepReport{Checked: 1}, errors.New("db down")).Once()

	rec := do(r, http.MethodPost, "/api/guilds/42/sweep", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"report":{"checked":3,"purged":1,"released":0}}`, rec.Body.String())

	rec = do(r, http.MethodPost, "/api/guilds/42/sweep", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}

func TestAdminToken(t *testing.T) {
	r, m := newTestRouter(RouterOptions{AdminToken: "secret"})
	m.rooms.On("List", mock.Anything, "42").Return([]*domain.Room{}, nil)

	tcases := []struct {
		name   string
		header http.Header
		code   int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", http.Header{"Authorization": {"Bearer nope"}}, http.StatusUnauthorized},
		{"basic scheme", http.Header{"Authorization": {"Basic secret"}}, http.StatusUnauthorized},
		{"valid", http.Header{"Authorization": {"Bearer secret"}}, http.StatusOK},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(r, http.MethodGet, "/api/guilds/42/rooms", tc.header)
			assert.Equal(t, tc.code, rec.Code)
		})
	}

	rec := do(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
