package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/onboard-hq/onboard-server/config"
	"github.com/onboard-hq/onboard-server/formfill"
	"github.com/onboard-hq/onboard-server/models"
	"github.com/onboard-hq/onboard-server/utils"
)

/* ========== Customer management ========== */

// GET /api/admin/customers?page=1&limit=20&search=
func ListCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := config.DB.Model(&models.AppUser{}).Where("role = ?", models.RoleCustomer)
	if s := c.Query("search"); s != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ? OR company ILIKE ?",
			"%"+s+"%", "%"+s+"%", "%"+s+"%")
	}

	var total int64
	query.Count(&total)

	var customers []models.AppUser
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list customers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":      page,
		"limit":     limit,
		"total":     total,
		"customers": customers,
	})
}

func GetCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var u models.AppUser
	if err := config.DB.
		Preload("Assignments").
		Where("id = ? AND role = ?", id, models.RoleCustomer).
		First(&u).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

type createCustomerReq struct {
	Name     string `json:"name" binding:"required,min=1"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Company  string `json:"company"`
}

func CreateCustomer(c *gin.Context) {
	var req createCustomerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	var count int64
	config.DB.Model(&models.AppUser{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Email already registered"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not hash password"})
		return
	}

	u := models.AppUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Company:  req.Company,
		Role:     models.RoleCustomer,
	}
	if err := config.DB.Create(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create customer"})
		return
	}
	c.JSON(http.StatusCreated, u)
}

type updateCustomerReq struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
}

func UpdateCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var req updateCustomerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	res := config.DB.Model(&models.AppUser{}).
		Where("id = ? AND role = ?", id, models.RoleCustomer).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func DeleteCustomer(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	res := config.DB.Where("role = ?", models.RoleCustomer).Delete(&models.AppUser{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

/* ========== Assignments ========== */

type assignReq struct {
	AppUserID  uint `json:"app_user_id" binding:"required"`
	TemplateID uint `json:"template_id" binding:"required"`
}

// AssignTemplate creates a pending assignment and emails the customer.
// A failed email is logged, not surfaced; the assignment stands.
func AssignTemplate(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	var customer models.AppUser
	if err := config.DB.
		Where("id = ? AND role = ?", req.AppUserID, models.RoleCustomer).
		First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Customer not found"})
		return
	}
	var t models.Template
	if err := config.DB.
		Where("id = ? AND status = 'active'", req.TemplateID).
		First(&t).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Template not found"})
		return
	}

	var count int64
	config.DB.Model(&models.Assignment{}).
		Where("app_user_id = ? AND template_id = ?", req.AppUserID, req.TemplateID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"message": "Template already assigned"})
		return
	}

	a := models.Assignment{
		AppUserID:  req.AppUserID,
		TemplateID: req.TemplateID,
		Status:     models.AssignmentPending,
	}
	if err := config.DB.Create(&a).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create assignment"})
		return
	}

	go func() {
		body := fmt.Sprintf("<p>Hi %s,</p><p>A new onboarding form <b>%s</b> has been assigned to you.</p>",
			customer.Name, t.Name)
		if err := config.SendMail([]string{customer.Email}, "New onboarding form assigned", body); err != nil {
			log.Printf("assignment mail to %s failed: %v", customer.Email, err)
		}
	}()

	c.JSON(http.StatusCreated, a)
}

func ListAssignments(c *gin.Context) {
	query := config.DB.Model(&models.Assignment{}).Preload("AppUser").Preload("Template")
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", s)
	}

	var assignments []models.Assignment
	if err := query.Order("created_at DESC").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list assignments"})
		return
	}

	out := []gin.H{}
	for _, a := range assignments {
		out = append(out, gin.H{
			"id":         a.ID,
			"customer":   gin.H{"id": a.AppUser.ID, "name": a.AppUser.Name, "email": a.AppUser.Email},
			"template":   gin.H{"id": a.Template.ID, "name": a.Template.Name},
			"status":     a.Status,
			"created_at": a.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"assignments": out})
}

/* ========== Dashboard ========== */

// GetAdminDashboard aggregates derived metrics by iterating query
// results; nothing is persisted.
func GetAdminDashboard(c *gin.Context) {
	db := config.DB

	var customerCount, templateCount, openTickets int64
	db.Model(&models.AppUser{}).Where("role = ?", models.RoleCustomer).Count(&customerCount)
	db.Model(&models.Template{}).Where("status <> 'deleted'").Count(&templateCount)
	db.Model(&models.Ticket{}).Where("status = ?", models.TicketOpen).Count(&openTickets)

	// Customer growth by month
	var growth []struct {
		Month string
		Count int
	}
	db.Raw(`
		SELECT to_char(created_at, 'YYYY-MM') AS month, COUNT(*) AS count
		FROM app_users
		WHERE role = 'customer'
		GROUP BY month
		ORDER BY month
	`).Scan(&growth)
	growthStats := []gin.H{}
	for _, g := range growth {
		growthStats = append(growthStats, gin.H{"month": g.Month, "count": g.Count})
	}

	// Submission trend by day, last 30 days
	var trend []struct {
		Day   string
		Count int
	}
	db.Raw(`
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*) AS count
		FROM submissions
		WHERE created_at > now() - interval '30 days'
		GROUP BY day
		ORDER BY day
	`).Scan(&trend)
	trendStats := []gin.H{}
	for _, t := range trend {
		trendStats = append(trendStats, gin.H{"day": t.Day, "count": t.Count})
	}

	// Completion rate per template, computed through the same progress
	// code the wizard uses.
	var templates []models.Template
	db.Where("status = 'active'").Find(&templates)
	completion := []gin.H{}
	for _, tmpl := range templates {
		tree, err := loadTemplateTree(db, int(tmpl.ID))
		if err != nil {
			continue
		}
		var assignments []models.Assignment
		db.Where("template_id = ?", tmpl.ID).Find(&assignments)

		submitted := 0
		sumPercent := 0
		for _, a := range assignments {
			if a.Status == models.AssignmentSubmitted {
				submitted++
			}
			answers, aerr := userAnswers(db, tmpl.ID, a.AppUserID)
			if aerr != nil {
				continue
			}
			ft := buildFormTemplate(tree, answers)
			percent, _ := formfill.ComputeTemplate(ft, formfill.FormData(answers))
			sumPercent += percent
		}

		entry := gin.H{
			"template_id": tmpl.ID,
			"template":    tmpl.Name,
			"assigned":    len(assignments),
			"submitted":   submitted,
			"avg_percent": 0,
			"submit_rate": 0.0,
		}
		if len(assignments) > 0 {
			entry["avg_percent"] = sumPercent / len(assignments)
			entry["submit_rate"] = float64(submitted) * 100 / float64(len(assignments))
		}
		completion = append(completion, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"customers":        customerCount,
		"templates":        templateCount,
		"open_tickets":     openTickets,
		"customer_growth":  growthStats,
		"submission_trend": trendStats,
		"completion":       completion,
	})
}
