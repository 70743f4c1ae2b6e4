package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hotelagreement/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSwaggerRouter(cfg SwaggerConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "swagger")
	})
	return router
}

func getSwagger(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	w := getSwagger(newSwaggerRouter(SwaggerConfig{Enabled: false}), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeNotFound, resp.Code)
}

func TestSwaggerProtection_NoRestrictions(t *testing.T) {
	w := getSwagger(newSwaggerRouter(SwaggerConfig{Enabled: true}), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "swagger", w.Body.String())
}

func TestSwaggerProtection_AllowList(t *testing.T) {
	router := newSwaggerRouter(SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"127.0.0.1", "10.0.0.0/8", "not-an-ip"},
	})

	tests := []struct {
		name       string
		remoteAddr string
		want       int
	}{
		{"exact ip", "127.0.0.1:12345", http.StatusOK},
		{"inside cidr", "10.50.100.200:12345", http.StatusOK},
		{"outside", "192.168.1.1:12345", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := getSwagger(router, tt.remoteAddr)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				var resp dto.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, dto.ErrCodeForbidden, resp.Code)
			}
		})
	}
}

func TestParseAllowList(t *testing.T) {
	ips, nets := parseAllowList([]string{"::1", "192.168.0.0/16", "bogus", "10.0.0.0/99"})

	require.Len(t, ips, 1)
	assert.True(t, ips[0].Equal(net.ParseIP("::1")))
	require.Len(t, nets, 1)
	assert.Equal(t, "192.168.0.0/16", nets[0].String())
}

func TestIsIPAllowed(t *testing.T) {
	ips, nets := parseAllowList([]string{"192.168.1.1", "::1", "10.0.0.0/8"})

	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{"exact match", "192.168.1.1", true},
		{"no match", "192.168.1.2", false},
		{"cidr match", "10.0.0.5", true},
		{"cidr no match", "11.0.0.5", false},
		{"ipv6 localhost", "::1", true},
		{"unparseable", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isIPAllowed(net.ParseIP(tt.ip), ips, nets))
		})
	}
}
