package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsaavisos/gateway/internal/directory"
	"github.com/itsaavisos/gateway/internal/graph"
)

func newUsersHandler(srvURL string) *UsersHandler {
	client := graph.NewClient(nil, srvURL, time.Second)
	return NewUsersHandler(testLogger(), directory.NewService(testLogger(), client, 0))
}

func TestListAllRequiresBearer(t *testing.T) {
	t.Parallel()

	h := newUsersHandler("http://unused.invalid")
	rec, err := doGet(echo.New(), h.ListAll, "/api/users/all")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"detail"`)
	assert.Contains(t, rec.Body.String(), "bearer token is required")
}

func TestListAllReturnsFilteredDirectory(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"value":[
			{"id":"g1","displayName":"Zoe Vega","mail":"2023S01234@alumnos.example.edu"},
			{"id":"g2","displayName":"Staff Account","mail":"staff@example.edu"},
			{"id":"g3","displayName":"Ana Ruiz","mail":"2024D00001@alumnos.example.edu"}
		]}`))
	}))
	defer srv.Close()

	h := newUsersHandler(srv.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/users/all", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListAll(echo.New().NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Usuarios []directory.Record `json:"usuarios"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Usuarios, 2)

	assert.Equal(t, 1, resp.Usuarios[0].SequentialID)
	assert.Equal(t, "Ana Ruiz", resp.Usuarios[0].DisplayName)
	assert.Equal(t, "2024D00001", resp.Usuarios[0].InstitutionalID)

	assert.Equal(t, 2, resp.Usuarios[1].SequentialID)
	assert.Equal(t, "Zoe Vega", resp.Usuarios[1].DisplayName)
}

func TestListAllReportsDirectoryFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h := newUsersHandler(srv.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/users/all", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListAll(echo.New().NewContext(req, rec)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to list users")
}
