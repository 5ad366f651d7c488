package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/onboard-hq/onboard-server/models"
)

func adminDataRouter(u models.AppUser) *gin.Engine {
	r := gin.New()
	admin := r.Group("/api/admin", asUser(u))
	admin.GET("/customers", ListCustomers)
	admin.POST("/customers", CreateCustomer)
	admin.GET("/customers/:id", GetCustomer)
	admin.PUT("/customers/:id", UpdateCustomer)
	admin.DELETE("/customers/:id", DeleteCustomer)
	admin.POST("/assignments", AssignTemplate)
	admin.GET("/assignments", ListAssignments)
	return r
}

func TestAssignTemplate(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	customer := createUser(t, db, models.RoleCustomer)
	seed := seedTemplate(t, db)
	r := adminDataRouter(admin)

	w := doJSON(t, r, "POST", "/api/admin/assignments", gin.H{
		"app_user_id": customer.ID, "template_id": seed.Template.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var a models.Assignment
	require.NoError(t, db.Where("app_user_id = ? AND template_id = ?",
		customer.ID, seed.Template.ID).First(&a).Error)
	assert.Equal(t, models.AssignmentPending, a.Status)

	// assigning the same template twice conflicts
	w = doJSON(t, r, "POST", "/api/admin/assignments", gin.H{
		"app_user_id": customer.ID, "template_id": seed.Template.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAssignTemplate_UnknownCustomerOrTemplate(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	customer := createUser(t, db, models.RoleCustomer)
	seed := seedTemplate(t, db)
	r := adminDataRouter(admin)

	w := doJSON(t, r, "POST", "/api/admin/assignments", gin.H{
		"app_user_id": 9999, "template_id": seed.Template.ID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// admins are not assignable customers
	w = doJSON(t, r, "POST", "/api/admin/assignments", gin.H{
		"app_user_id": admin.ID, "template_id": seed.Template.ID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "POST", "/api/admin/assignments", gin.H{
		"app_user_id": customer.ID, "template_id": 9999,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// archived templates cannot be assigned either
	require.NoError(t, db.Model(&seed.Template).Update("status", "archived").Error)
	w = doJSON(t, r, "POST", "/api/admin/assignments", gin.H{
		"app_user_id": customer.ID, "template_id": seed.Template.ID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAssignments_StatusFilter(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	customer := createUser(t, db, models.RoleCustomer)
	seed := seedTemplate(t, db)
	other := seedTemplate(t, db)
	assign(t, db, customer, seed.Template, models.AssignmentPending)
	assign(t, db, customer, other.Template, models.AssignmentSubmitted)
	r := adminDataRouter(admin)

	w := doJSON(t, r, "GET", "/api/admin/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["assignments"], 2)

	w = doJSON(t, r, "GET", "/api/admin/assignments?status=submitted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(t, w)["assignments"].([]interface{})
	require.Len(t, list, 1)
	entry := list[0].(map[string]interface{})
	assert.Equal(t, "submitted", entry["status"])
}

func TestCreateCustomer(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	r := adminDataRouter(admin)

	w := doJSON(t, r, "POST", "/api/admin/customers", gin.H{
		"name": "Carol", "email": "carol@example.com", "password": "s3cret!", "company": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var u models.AppUser
	require.NoError(t, db.Where("email = ?", "carol@example.com").First(&u).Error)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "s3cret!", u.Password)

	w = doJSON(t, r, "POST", "/api/admin/customers", gin.H{
		"name": "Carol", "email": "carol@example.com", "password": "s3cret!",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListCustomers_ExcludesAdmins(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	createUser(t, db, models.RoleCustomer)
	r := adminDataRouter(admin)

	w := doJSON(t, r, "GET", "/api/admin/customers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["total"])
	customers := body["customers"].([]interface{})
	require.Len(t, customers, 1)
	entry := customers[0].(map[string]interface{})
	assert.Equal(t, models.RoleCustomer, entry["role"])
	assert.NotContains(t, entry, "password")
}

func TestCustomerScoping(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	customer := createUser(t, db, models.RoleCustomer)
	r := adminDataRouter(admin)

	// admin accounts are invisible through the customer endpoints
	w := doJSON(t, r, "GET", "/api/admin/customers/"+itoa(admin.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, "PUT", "/api/admin/customers/"+itoa(admin.ID), gin.H{"name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, "DELETE", "/api/admin/customers/"+itoa(admin.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "GET", "/api/admin/customers/"+itoa(customer.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateAndDeleteCustomer(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	customer := createUser(t, db, models.RoleCustomer)
	r := adminDataRouter(admin)
	base := "/api/admin/customers/" + itoa(customer.ID)

	w := doJSON(t, r, "PUT", base, gin.H{"name": "Renamed", "company": "NewCo"})
	require.Equal(t, http.StatusOK, w.Code)
	var got models.AppUser
	require.NoError(t, db.First(&got, customer.ID).Error)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "NewCo", got.Company)

	w = doJSON(t, r, "PUT", base, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "DELETE", base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ErrorIs(t, db.First(&got, customer.ID).Error, gorm.ErrRecordNotFound)
	w = doJSON(t, r, "DELETE", base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
