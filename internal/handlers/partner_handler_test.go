package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouteRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Route only touches the database once a token validates, so the
	// unauthenticated paths run without one.
	handler := NewPartnerHandler(nil, nil)
	router.GET("/api/route", handler.Route)
	return router
}

func routeFor(t *testing.T, authorization string) string {
	t.Helper()
	router := setupRouteRouter()

	req, err := http.NewRequest("GET", "/api/route", nil)
	require.NoError(t, err)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body["route"]
}

func TestRouteWithoutTokenAnswersLogin(t *testing.T) {
	assert.Equal(t, "LOGIN", routeFor(t, ""))
}

func TestRouteWithMalformedHeaderAnswersLogin(t *testing.T) {
	assert.Equal(t, "LOGIN", routeFor(t, "garbage"))
}

func TestRouteWithInvalidTokenAnswersLogin(t *testing.T) {
	// An invalid token is treated the same as no token, never a 401.
	assert.Equal(t, "LOGIN", routeFor(t, "Bearer not-a-valid-jwt"))
}
