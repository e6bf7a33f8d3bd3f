package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThanimaVITC/thanima-connect/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	g := gin.New()
	g.Use(RequestID(), AccessLog())
	g.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestID(c.Request.Context()))
	})

	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rw.Header().Get(RequestIDHeader)
	require.Len(t, generated, 36)
	require.Equal(t, generated, rw.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "edge-42")
	rw = httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, "edge-42", rw.Header().Get(RequestIDHeader))
	require.Equal(t, "edge-42", rw.Body.String())
}
