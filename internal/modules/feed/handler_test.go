package feed

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"venuehouse/internal/pkg/jwt"
)

func TestOriginChecker_FiltersHandshakeOrigins(t *testing.T) {
	check := originChecker()

	cases := []struct {
		name   string
		origin string
		want   bool
	}{
		{"local dashboard", "http://localhost:5173", true},
		{"loopback dashboard", "http://127.0.0.1:3000", true},
		{"no origin header", "", true},
		{"unknown host", "https://attacker.example.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/ws/feed", nil)
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.want, check(r))
		})
	}
}

func TestOriginChecker_ExtendsAllowlistFromEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dash.venuehouse.example, https://ops.venuehouse.example")
	check := originChecker()

	r, _ := http.NewRequest(http.MethodGet, "/ws/feed", nil)
	r.Header.Set("Origin", "https://dash.venuehouse.example")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://other.example")
	assert.False(t, check(r))
}

func TestHandleWebSocket_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewHub(), jwt.New("test-secret", time.Hour))
	router := gin.New()
	router.GET("/ws/feed", h.HandleWebSocket)

	w := httptest.NewRecorder()
	r, _ := http.NewRequest(http.MethodGet, "/ws/feed", nil)
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
