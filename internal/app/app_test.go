package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/goph-notes/internal/config"
	"github.com/and161185/goph-notes/internal/repository/memory"
)

func memoryConfig() config.Config {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory
	cfg.Auth.JWTKey = "app-test"
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.GRPC.HealthAddr = "127.0.0.1:0"
	cfg.GRPC.CheckInterval = 50 * time.Millisecond
	cfg.HTTP.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Auth.JWTKey = ""
	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := memoryConfig().Store
	cfg.Driver = "nope"
	_, err := OpenStore(context.Background(), cfg, zaptest.NewLogger(t))
	require.ErrorContains(t, err, "unknown store driver")
}

func TestOpenStore_WrapsReposWithCallTimeout(t *testing.T) {
	cfg := memoryConfig().Store
	cfg.Timeout = time.Second
	st, err := OpenStore(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, isMem := st.Notes.(*memory.NoteRepo)
	require.False(t, isMem, "notes repo must be wrapped when store.timeout is set")

	cfg.Timeout = 0
	st, err = OpenStore(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, isMem = st.Notes.(*memory.NoteRepo)
	require.True(t, isMem)
}

func TestApp_MemoryStoreServesAPI(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"fullName": "A", "email": "a@x.com", "password": "pw"})
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/create-account", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	req := httptest.NewRequest(http.MethodGet, "/get-user", nil)
	req.Header.Set("Authorization", "Bearer "+out.AccessToken)
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
