package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerAttachesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var got string
	engine.POST("/", requestLogger(), func(c *gin.Context) {
		got = c.GetString("request_id")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, got, "downstream handlers must see the request ID")
	_, err := uuid.Parse(got)
	assert.NoError(t, err, "request ID must be a UUID")
}
