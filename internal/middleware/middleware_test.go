package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant": c.GetString(logger.TenantContextKey)})
	})
	r.GET("/resource", handlers...)
	return r
}

func perform(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func TestTenantMiddleware(t *testing.T) {
	r := newRouter(Tenant("X-Tenant-ID"))

	w := perform(r, map[string]string{"X-Tenant-ID": " school-a "})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tenant":"school-a"}`, w.Body.String())

	w = perform(r, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TENANT", errorCode(t, w))

	w = perform(r, map[string]string{"X-Tenant-ID": "school a; drop"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJWTMiddlewareTenantBinding(t *testing.T) {
	auth := service.NewAuthService("secret")
	r := newRouter(Tenant(""), JWT(auth))
	token, err := auth.IssueToken("user-1", "school-a", models.RoleScheduler, time.Hour)
	require.NoError(t, err)

	w := perform(r, map[string]string{"X-Tenant-ID": "school-a", "Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, map[string]string{"X-Tenant-ID": "school-b", "Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))

	w = perform(r, map[string]string{"X-Tenant-ID": "school-a"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, map[string]string{"X-Tenant-ID": "school-a", "Authorization": "Token " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, map[string]string{"X-Tenant-ID": "school-a", "Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	auth := service.NewAuthService("secret")
	r := newRouter(Tenant(""), JWT(auth), RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))

	admin, err := auth.IssueToken("user-1", "school-a", models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	viewer, err := auth.IssueToken("user-2", "school-a", models.RoleViewer, time.Hour)
	require.NoError(t, err)

	w := perform(r, map[string]string{"X-Tenant-ID": "school-a", "Authorization": "Bearer " + admin})
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, map[string]string{"X-Tenant-ID": "school-a", "Authorization": "Bearer " + viewer})
	assert.Equal(t, http.StatusForbidden, w.Code)

	open := newRouter(Tenant(""), RequireRoles(models.RoleAdmin))
	w = perform(open, map[string]string{"X-Tenant-ID": "school-a"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/resource", Tenant(""), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, map[string]string{"X-Tenant-ID": "school-a"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = perform(r, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/nowhere/42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	series := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			series[labels["route"]+"|"+labels["tenant"]+"|"+labels["status"]] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"/resource|school-a|200": 1,
		"/resource|none|400":     1,
		"unmatched|none|404":     1,
	}, series)
}
