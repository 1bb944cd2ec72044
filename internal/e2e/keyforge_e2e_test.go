package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/keyforge/internal/clock"
	"github.com/smallbiznis/keyforge/internal/config"
	keydomain "github.com/smallbiznis/keyforge/internal/key/domain"
	keyrepository "github.com/smallbiznis/keyforge/internal/key/repository"
	keyservice "github.com/smallbiznis/keyforge/internal/key/service"
	"github.com/smallbiznis/keyforge/internal/seed"
	"github.com/smallbiznis/keyforge/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	fake    *clock.FakeClock
	db      *gorm.DB
	httpSrv *httptest.Server
}

func startEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&keydomain.LicenseKey{},
		&keydomain.KeyTypeDefinition{},
		&keydomain.Sale{},
	))
	require.NoError(t, seed.EnsureKeyTypes(db, zap.NewNop()))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := keyservice.New(keyservice.Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  keyrepository.Provide(db),
	})

	engine := gin.New()
	engine.RedirectFixedPath = true
	engine.Use(server.CORS())
	engine.Use(server.ErrorHandlingMiddleware())
	server.NewServer(server.ServerParams{
		Gin:    engine,
		Cfg:    config.Config{Backend: config.BackendSQLite},
		KeySvc: svc,
	})

	httpSrv := httptest.NewServer(engine)
	t.Cleanup(httpSrv.Close)

	return &testEnv{fake: fake, db: db, httpSrv: httpSrv}
}

func (e *testEnv) post(t *testing.T, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(e.httpSrv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return drain(t, resp)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(e.httpSrv.URL + path)
	require.NoError(t, err)
	return drain(t, resp)
}

func drain(t *testing.T, resp *http.Response) (*http.Response, []byte) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestKeyLifecycle(t *testing.T) {
	env := startEnv(t)

	expiry := env.fake.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339)
	resp, body := env.post(t, "/api/keys/create", fmt.Sprintf(
		`{"keyValue":"AAAA-BBBB","machineId":"m-1","expiryDate":%q,"keyType":"Month","customerTelegram":"@alice","price":30}`,
		expiry,
	))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.True(t, envelope.Success)

	resp, body = env.get(t, "/api/keys/validate?key=AAAA-BBBB&machineId=m-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", strings.TrimSpace(string(body)))

	resp, body = env.get(t, "/api/keys/info?key=AAAA-BBBB")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info map[string]any
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, "m-1", info["machineId"])
	assert.Equal(t, true, info["isActive"])

	resp, _ = env.post(t, "/api/keys/deactivate?key=AAAA-BBBB", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.get(t, "/api/keys/validate?key=AAAA-BBBB&machineId=m-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "false", strings.TrimSpace(string(body)))

	resp, body = env.get(t, "/api/keys/user?telegram=@alice")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var keys []map[string]any
	require.NoError(t, json.Unmarshal(body, &keys))
	assert.Len(t, keys, 1)

	resp, body = env.get(t, "/api/keys/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, float64(1), stats["totalKeys"])
	assert.Equal(t, float64(0), stats["activeKeys"])
	assert.Equal(t, float64(30), stats["totalRevenue"])

	resp, body = env.get(t, "/api/keys/types")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var types []map[string]any
	require.NoError(t, json.Unmarshal(body, &types))
	assert.NotEmpty(t, types)

	resp, _ = env.get(t, "/api/keys/info?key=NO-SUCH")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaleRecordedOnCreate(t *testing.T) {
	env := startEnv(t)

	expiry := env.fake.Now().Add(24 * time.Hour).Format(time.RFC3339)
	resp, _ := env.post(t, "/api/keys/create", fmt.Sprintf(
		`{"keyValue":"SALE-KEY","machineId":"m-1","expiryDate":%q,"keyType":"Week","customerTelegram":"@bob","price":10}`,
		expiry,
	))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sales []keydomain.Sale
	require.NoError(t, env.db.Find(&sales).Error)
	require.Len(t, sales, 1)
	assert.Equal(t, keydomain.SaleStatusCompleted, sales[0].Status)
	assert.Equal(t, float64(10), sales[0].Amount)
}
