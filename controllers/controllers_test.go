package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onboard-hq/onboard-server/config"
	"github.com/onboard-hq/onboard-server/middleware"
	"github.com/onboard-hq/onboard-server/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// setupTestDB swaps config.DB for an in-memory sqlite database for the
// duration of one test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	prev := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = prev
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

// asUser injects an already-authenticated user, standing in for the
// JWT middleware.
func asUser(u models.AppUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUser, u)
		c.Set(middleware.CtxUserPublic, gin.H{
			"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role,
		})
		c.Next()
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func createUser(t *testing.T, db *gorm.DB, role string) models.AppUser {
	t.Helper()
	u := models.AppUser{
		Name:     fmt.Sprintf("%s user", role),
		Email:    fmt.Sprintf("%s-%s@example.com", role, t.Name()),
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// seededTemplate is the fixture most fill tests run against: one
// section with a required text question and an optional checkbox, a
// conditional group holding a required question, and a second section
// with a required select.
type seededTemplate struct {
	Template models.Template
	Name     models.Question // required text, section 1
	Agree    models.Question // optional checkbox, section 1
	Detail   models.Question // required text in group shown when Agree == "true"
	Size     models.Question // required select, section 2
}

func seedTemplate(t *testing.T, db *gorm.DB) seededTemplate {
	t.Helper()

	tmpl := models.Template{Name: "Onboarding", Status: "active"}
	require.NoError(t, db.Create(&tmpl).Error)

	s1 := models.Section{TemplateID: tmpl.ID, Title: "Company", Order: 0}
	require.NoError(t, db.Create(&s1).Error)
	s2 := models.Section{TemplateID: tmpl.ID, Title: "Billing", Order: 1}
	require.NoError(t, db.Create(&s2).Error)

	g1 := models.Group{SectionID: s1.ID, Title: "Basics", Order: 0}
	require.NoError(t, db.Create(&g1).Error)

	name := models.Question{GroupID: g1.ID, Title: "Company name", Label: "Company name", Required: true, Type: models.QuestionText}
	require.NoError(t, db.Create(&name).Error)
	agree := models.Question{GroupID: g1.ID, Title: "Share details?", Label: "Share details?", Type: models.QuestionCheckbox, Order: 1}
	require.NoError(t, db.Create(&agree).Error)

	g2 := models.Group{
		SectionID: s1.ID, Title: "Details", Order: 1,
		ShowIfQuestionID: &agree.ID, ShowIfCondition: "equals", ShowIfValue: "true",
	}
	require.NoError(t, db.Create(&g2).Error)
	detail := models.Question{GroupID: g2.ID, Title: "Extra detail", Label: "Extra detail", Required: true, Type: models.QuestionText}
	require.NoError(t, db.Create(&detail).Error)

	g3 := models.Group{SectionID: s2.ID, Title: "Plan", Order: 0}
	require.NoError(t, db.Create(&g3).Error)
	size := models.Question{GroupID: g3.ID, Title: "Company size", Label: "Company size", Required: true, Type: models.QuestionSelect}
	require.NoError(t, db.Create(&size).Error)
	for i, v := range []string{"1-10", "11-50", "51+"} {
		require.NoError(t, db.Create(&models.SelectOption{QuestionID: size.ID, Value: v, Order: i}).Error)
	}

	return seededTemplate{Template: tmpl, Name: name, Agree: agree, Detail: detail, Size: size}
}

func assign(t *testing.T, db *gorm.DB, user models.AppUser, tmpl models.Template, status string) models.Assignment {
	t.Helper()
	a := models.Assignment{AppUserID: user.ID, TemplateID: tmpl.ID, Status: status}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func answer(t *testing.T, db *gorm.DB, q models.Question, user models.AppUser, value string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Submission{
		QuestionID: q.ID, AnsweredByID: user.ID, Answer: value,
	}).Error)
}
