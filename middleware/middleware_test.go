package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, ActorID(c))
	})
	return r
}

func do(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentityFromHeader(t *testing.T) {
	r := newRouter(IdentityMiddleware(""))

	if w := do(r, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status %d", w.Code)
	}
	w := do(r, map[string]string{ActorIDHeader: " 4242 "})
	if w.Code != http.StatusOK || w.Body.String() != "4242" {
		t.Fatalf("status %d body %q", w.Code, w.Body.String())
	}
}

func TestIdentityFromToken(t *testing.T) {
	r := newRouter(IdentityMiddleware("secret"))
	token, err := utils.IssueActorToken("secret", "777", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	w := do(r, map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK || w.Body.String() != "777" {
		t.Fatalf("status %d body %q", w.Code, w.Body.String())
	}

	// The plain header is not trusted once tokens are required.
	if w := do(r, map[string]string{ActorIDHeader: "777"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("header fallback accepted: %d", w.Code)
	}
	forged, _ := utils.IssueActorToken("other", "777", time.Hour)
	if w := do(r, map[string]string{"Authorization": "Bearer " + forged}); w.Code != http.StatusUnauthorized {
		t.Fatalf("forged token accepted: %d", w.Code)
	}
}

func TestAdminMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("let-me-in"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	r := newRouter(AdminMiddleware(string(hash)))

	if w := do(r, map[string]string{AdminTokenHeader: "let-me-in"}); w.Code != http.StatusOK {
		t.Fatalf("valid token: %d", w.Code)
	}
	if w := do(r, map[string]string{AdminTokenHeader: "guess"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: %d", w.Code)
	}
	if w := do(newRouter(AdminMiddleware("")), map[string]string{AdminTokenHeader: "let-me-in"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("unconfigured admin: %d", w.Code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := newRouter(RateLimitMiddleware(2))
	a := map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.9"}
	b := map[string]string{"X-Real-IP": "10.0.0.2"}

	for i := 0; i < 2; i++ {
		if w := do(r, a); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	if w := do(r, a); w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: %d", w.Code)
	}
	if w := do(r, b); w.Code != http.StatusOK {
		t.Fatalf("other ip limited: %d", w.Code)
	}
}

func TestRequestLoggerSetsID(t *testing.T) {
	r := newRouter(RequestLogger(zap.NewNop()))
	w := do(r, nil)
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("missing request id")
	}
	w = do(r, map[string]string{RequestIDHeader: "abc"})
	if got := w.Header().Get(RequestIDHeader); got != "abc" {
		t.Fatalf("request id = %q", got)
	}
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded first", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.9"}, "10.0.0.1"},
		{"forwarded skips junk", map[string]string{"X-Forwarded-For": "unknown, 10.0.0.9"}, "10.0.0.9"},
		{"real ip", map[string]string{"X-Real-IP": " 10.0.0.2 "}, "10.0.0.2"},
		{"peer", nil, "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				c.Request.Header.Set(k, v)
			}
			if got := getClientIP(c); got != tc.want {
				t.Fatalf("getClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIdleLimitersAreForgotten(t *testing.T) {
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	l := newIPLimiters(1)
	l.now = func() time.Time { return now }

	if !l.allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if l.allow("10.0.0.1") {
		t.Fatal("burst of one should be spent")
	}

	now = now.Add(limiterIdleTTL + time.Second)
	if !l.allow("10.0.0.2") {
		t.Fatal("new ip should pass")
	}
	if got := l.size(); got != 1 {
		t.Fatalf("limiters = %d, want only the fresh one", got)
	}
}
