package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboard-hq/onboard-server/models"
)

func authRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/auth/register", Register)
	r.POST("/api/auth/login", Login)
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)
	t.Setenv("JWT_SECRET", "test-secret")
	r := authRouter()

	w := doJSON(t, r, "POST", "/api/auth/register", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "s3cret!", "company": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, models.RoleCustomer, user["role"])
	assert.NotContains(t, user, "password")

	w = doJSON(t, r, "POST", "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "s3cret!",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decodeBody(t, w)["token"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	setupTestDB(t)
	r := authRouter()

	payload := gin.H{"name": "Alice", "email": "alice@example.com", "password": "s3cret!"}
	w := doJSON(t, r, "POST", "/api/auth/register", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/auth/register", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_Validation(t *testing.T) {
	setupTestDB(t)
	r := authRouter()

	w := doJSON(t, r, "POST", "/api/auth/register", gin.H{
		"name": "Alice", "email": "not-an-email", "password": "s3cret!",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, "POST", "/api/auth/register", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLogin_WrongCredentials(t *testing.T) {
	setupTestDB(t)
	t.Setenv("JWT_SECRET", "test-secret")
	r := authRouter()

	w := doJSON(t, r, "POST", "/api/auth/register", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "s3cret!",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, "POST", "/api/auth/login", gin.H{
		"email": "nobody@example.com", "password": "s3cret!",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, models.RoleCustomer)

	r := gin.New()
	r.GET("/api/me", asUser(u), Me)
	w := doJSON(t, r, "GET", "/api/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, u.Email, got["email"])
}
