package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swaggerRouter(cfg SwaggerConfig, authenticate gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/swagger/*any", SwaggerProtection(cfg, authenticate), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return r
}

func getDocs(r *gin.Engine, remoteAddr, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	if authorization != "" {
		req.Header.Set(AuthHeaderKey, authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled answers not found", func(t *testing.T) {
		w := getDocs(swaggerRouter(SwaggerConfig{}, nil), "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeRouteNotFound, errorCode(t, w))
	})

	t.Run("enabled without restrictions", func(t *testing.T) {
		w := getDocs(swaggerRouter(SwaggerConfig{Enabled: true}, nil), "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "docs", w.Body.String())
	})

	t.Run("allow list", func(t *testing.T) {
		r := swaggerRouter(SwaggerConfig{
			Enabled:    true,
			AllowedIPs: []string{"127.0.0.1", "10.0.0.0/8", "not-an-ip"},
		}, nil)

		tests := []struct {
			name   string
			remote string
			want   int
		}{
			{"exact ip", "127.0.0.1:5000", http.StatusOK},
			{"inside cidr", "10.20.30.40:5000", http.StatusOK},
			{"outside", "192.168.1.9:5000", http.StatusForbidden},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := getDocs(r, tt.remote, "")
				assert.Equal(t, tt.want, w.Code)
			})
		}
	})

	t.Run("require auth", func(t *testing.T) {
		svc := newTestJWTService(15 * time.Minute)
		r := swaggerRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, JWTAuth(JWTMiddlewareConfig{JWTService: svc}))

		w := getDocs(r, "", "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))

		token := issueToken(t, svc, uuid.New(), "admin")
		w = getDocs(r, "", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestParseAllowList(t *testing.T) {
	list := parseAllowList([]string{" 192.168.0.1 ", "172.16.0.0/12", "bogus", "300.1.1.1"})
	assert.Len(t, list.ips, 1)
	assert.Len(t, list.nets, 1)
	assert.True(t, list.contains(net.ParseIP("172.20.1.1")))
	assert.True(t, list.contains(net.ParseIP("192.168.0.1")))
	assert.False(t, list.contains(net.ParseIP("192.168.0.2")))
	assert.False(t, list.contains(nil))
}
