package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onboard-hq/onboard-server/models"
)

func adminRouter(u models.AppUser) *gin.Engine {
	r := gin.New()
	admin := r.Group("/api/admin", asUser(u))
	admin.POST("/templates", CreateTemplate)
	admin.GET("/templates/:id", GetTemplate)
	admin.PUT("/templates/:id", UpdateTemplate)
	admin.DELETE("/templates/:id", DeleteTemplate)
	admin.PUT("/templates/:id/archive", ArchiveTemplate)
	admin.PUT("/templates/:id/restore", RestoreTemplate)
	admin.POST("/templates/:id/sections", AddSection)
	admin.PUT("/templates/:id/sections/reorder", ReorderSections)
	admin.POST("/sections/:id/groups", AddGroup)
	admin.POST("/groups/:id/questions", AddQuestion)
	return r
}

func TestCreateTemplate_NestedTree(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	r := adminRouter(admin)

	w := doJSON(t, r, "POST", "/api/admin/templates", gin.H{
		"name":        "Onboarding",
		"description": "New customer intake",
		"sections": []gin.H{
			{"title": "Company", "order": 0, "groups": []gin.H{
				{"title": "Basics", "questions": []gin.H{
					{"title": "Company name", "type": "text", "required": true},
					{"title": "Size", "type": "select", "options": []string{"1-10", "11-50"}},
				}},
			}},
			{"title": "Billing", "order": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeBody(t, w)["id"].(float64)

	tmpl, err := loadTemplateTree(db, int(id))
	require.NoError(t, err)
	assert.Equal(t, admin.ID, *tmpl.CreatedByID)
	require.Len(t, tmpl.Sections, 2)
	require.Len(t, tmpl.Sections[0].Groups, 1)
	require.Len(t, tmpl.Sections[0].Groups[0].Questions, 2)
	assert.Len(t, tmpl.Sections[0].Groups[0].Questions[1].SelectOptions, 2)
}

func TestCreateTemplate_RejectsBadQuestionType(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)

	w := doJSON(t, adminRouter(admin), "POST", "/api/admin/templates", gin.H{
		"name": "Bad",
		"sections": []gin.H{
			{"title": "S", "groups": []gin.H{
				{"questions": []gin.H{{"title": "Q", "type": "slider"}}},
			}},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTemplateStatusLifecycle(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	seed := seedTemplate(t, db)
	r := adminRouter(admin)
	base := "/api/admin/templates/" + itoa(seed.Template.ID)

	w := doJSON(t, r, "PUT", base+"/archive", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tmpl models.Template
	require.NoError(t, db.First(&tmpl, seed.Template.ID).Error)
	assert.Equal(t, "archived", tmpl.Status)

	w = doJSON(t, r, "PUT", base+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// soft delete hides the template from reads
	w = doJSON(t, r, "DELETE", base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, "GET", base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, "PUT", base+"/restore", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddGroup_ValidatesShowIfReference(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	seed := seedTemplate(t, db)
	other := seedTemplate(t, db) // second template, foreign questions

	var sec models.Section
	require.NoError(t, db.Where("template_id = ?", seed.Template.ID).First(&sec).Error)
	path := "/api/admin/sections/" + itoa(sec.ID) + "/groups"
	r := adminRouter(admin)

	// reference into another template is rejected
	w := doJSON(t, r, "POST", path, gin.H{
		"title":               "Conditional",
		"show_if_question_id": other.Name.ID,
		"show_if_condition":   "equals",
		"show_if_value":       "yes",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "POST", path, gin.H{
		"title":               "Conditional",
		"show_if_question_id": seed.Agree.ID,
		"show_if_condition":   "equals",
		"show_if_value":       "true",
		"questions":           []gin.H{{"title": "Why?", "type": "text"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestReorderSections(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, models.RoleAdmin)
	seed := seedTemplate(t, db)
	r := adminRouter(admin)

	var sections []models.Section
	require.NoError(t, db.Where("template_id = ?", seed.Template.ID).Order("sort_order").Find(&sections).Error)
	require.Len(t, sections, 2)

	path := "/api/admin/templates/" + itoa(seed.Template.ID) + "/sections/reorder"
	w := doJSON(t, r, "PUT", path, gin.H{"order": []uint{sections[1].ID, sections[0].ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got []models.Section
	require.NoError(t, db.Where("template_id = ?", seed.Template.ID).Order("sort_order").Find(&got).Error)
	assert.Equal(t, sections[1].ID, got[0].ID)

	// an id from another template poisons the whole request
	other := seedTemplate(t, db)
	var foreign models.Section
	require.NoError(t, db.Where("template_id = ?", other.Template.ID).First(&foreign).Error)
	w = doJSON(t, r, "PUT", path, gin.H{"order": []uint{sections[0].ID, foreign.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
