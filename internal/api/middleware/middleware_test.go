package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scout-assist/config"
	"scout-assist/internal/authz"
	"scout-assist/pkg/jwt"
	"scout-assist/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── 测试替身 ──

type fakeAuth struct {
	principals map[string]authz.Principal
	err        error
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (authz.Principal, *jwt.Claims, error) {
	if f.err != nil {
		return authz.Principal{}, nil, f.err
	}
	pr, ok := f.principals[token]
	if !ok {
		return authz.Principal{}, nil, jwt.ErrTokenInvalid
	}
	return pr, &jwt.Claims{UserID: pr.UserID, Username: pr.Username}, nil
}

type fakeLimiter struct {
	counts map[string]int
	err    error
}

func (l *fakeLimiter) CheckRateLimit(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

type recordedActivity struct {
	pr     authz.Principal
	action string
	detail map[string]interface{}
}

type fakeRecorder struct {
	records []recordedActivity
}

func (r *fakeRecorder) RecordActivity(_ context.Context, pr authz.Principal, action string, detail map[string]interface{}) {
	r.records = append(r.records, recordedActivity{pr: pr, action: action, detail: detail})
}

func newPolicy(t *testing.T) *authz.Policy {
	t.Helper()
	p, err := authz.NewPolicy(config.DefaultRoles())
	require.NoError(t, err)
	return p
}

func perform(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var (
	adminPr = authz.Principal{UserID: 1, Username: "admin", Role: "admin"}
	userPr  = authz.Principal{UserID: 2, Username: "tanaka", Role: "user"}
)

func authRouter(t *testing.T) *gin.Engine {
	r := gin.New()
	auth := &fakeAuth{principals: map[string]authz.Principal{"admin-token": adminPr, "user-token": userPr}}
	g := r.Group("/api", JWTAuth(auth))
	g.GET("/me", func(c *gin.Context) {
		pr := c.MustGet(PrincipalKey).(authz.Principal)
		c.String(http.StatusOK, pr.Username)
	})
	g.GET("/admin", Require(newPolicy(t), authz.Has(authz.CapManageUsers)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

// ── JWTAuth / Require ──

func TestJWTAuth(t *testing.T) {
	r := authRouter(t)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"缺少认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token abc", http.StatusUnauthorized},
		{"空 token", "Bearer ", http.StatusUnauthorized},
		{"无效 token", "Bearer nope", http.StatusUnauthorized},
		{"有效 token", "Bearer user-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := perform(r, http.MethodGet, "/api/me", "", headers)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestJWTAuth_ExpiredMessage(t *testing.T) {
	r := gin.New()
	r.GET("/x", JWTAuth(&fakeAuth{err: jwt.ErrTokenExpired}), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", "", map[string]string{"Authorization": "Bearer t"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "有効期限")
}

func TestRequire(t *testing.T) {
	r := authRouter(t)

	w := perform(r, http.MethodGet, "/api/admin", "", map[string]string{"Authorization": "Bearer user-token"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":10003`)

	w = perform(r, http.MethodGet, "/api/admin", "", map[string]string{"Authorization": "Bearer admin-token"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequire_WithoutPrincipal(t *testing.T) {
	r := gin.New()
	r.GET("/x", Require(newPolicy(t), authz.Has(authz.CapGenerate)), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ── CORS ──

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}, []string{`https://scout-[a-z0-9-]+\.vercel\.app`}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:5173", true},
		{"https://scout-pr-12.vercel.app", true},
		{"https://scout-pr-12.vercel.app.evil.com", false},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			w := perform(r, http.MethodGet, "/x", "", map[string]string{"Origin": tt.origin})
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}

	w := perform(r, http.MethodOptions, "/x", "", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

// ── RateLimit ──

func TestRateLimit_PerUser(t *testing.T) {
	limiter := &fakeLimiter{counts: map[string]int{}}
	r := gin.New()
	r.POST("/gen", func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-User"))
		c.Next()
	}, RateLimit(limiter, zap.NewNop(), 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := perform(r, http.MethodPost, "/gen", "", map[string]string{"X-User": "1"})
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := perform(r, http.MethodPost, "/gen", "", map[string]string{"X-User": "1"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 其他用户独立计数
	w = perform(r, http.MethodPost, "/gen", "", map[string]string{"X-User": "2"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_DegradesOnError(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(&fakeLimiter{err: errors.New("redis down")}, zap.NewNop(), 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/x", "", nil).Code)
	}

	r2 := gin.New()
	r2.GET("/x", RateLimit(nil, zap.NewNop(), 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, perform(r2, http.MethodGet, "/x", "", nil).Code)
}

// ── Activity ──

func TestActivity_RedactsAndSkipsFailures(t *testing.T) {
	rec := &fakeRecorder{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(PrincipalKey, adminPr)
		c.Next()
	})
	r.PUT("/users/:id", Activity(rec, "user.update"), func(c *gin.Context) {
		var body map[string]interface{}
		require.NoError(t, c.ShouldBindJSON(&body))
		assert.Equal(t, "secret123", body["password"], "处理器应收到原始请求体")
		c.Status(http.StatusOK)
	})
	r.DELETE("/users/:id", Activity(rec, "user.delete"), func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	w := perform(r, http.MethodPut, "/users/7", `{"username":"x","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, rec.records, 1)

	got := rec.records[0]
	assert.Equal(t, "user.update", got.action)
	assert.Equal(t, adminPr, got.pr)
	body := got.detail["body"].(map[string]interface{})
	assert.Equal(t, "***", body["password"])
	assert.Equal(t, "x", body["username"])
	assert.Equal(t, map[string]string{"id": "7"}, got.detail["params"])

	perform(r, http.MethodDelete, "/users/7", "", nil)
	assert.Len(t, rec.records, 1, "失败请求不应留痕")
}

// ── BodyLimit / RequestID / SecurityHeaders ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodPost, "/x", strings.Repeat("a", 64), nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"code":10005`)

	w = perform(r, http.MethodPost, "/x", "{}", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := perform(r, http.MethodGet, "/x", "", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())

	for _, bad := range []string{strings.Repeat("x", 100), "abc\tforged=1", "id with space", "ＩＤ"} {
		w = perform(r, http.MethodGet, "/x", "", map[string]string{"X-Request-ID": bad})
		assert.Len(t, w.Header().Get("X-Request-ID"), 36, "不合法的 ID 应替换为 UUID: %q", bad)
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	}
}

func TestRequestID_EchoedInErrorResponse(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), BodyLimit(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodPost, "/x", `{"too":"large"}`, map[string]string{"X-Request-ID": "req-42"})
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, response.CodeBodyTooLarge, body.Code)
	assert.Equal(t, response.MsgBodyTooLarge, body.Message)
	assert.Equal(t, "req-42", body.RequestID)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", "", nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "same-site", w.Header().Get("Cross-Origin-Resource-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
}

func TestMetricsHandler(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", MetricsHandler())

	perform(r, http.MethodGet, "/x", "", nil)
	w := perform(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scout_assist_http_requests_total")
}
