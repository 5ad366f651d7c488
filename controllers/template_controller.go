package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onboard-hq/onboard-server/config"
	"github.com/onboard-hq/onboard-server/middleware"
	"github.com/onboard-hq/onboard-server/models"
)

/* ========== Template CRUD (admin) ========== */

type createQuestionReq struct {
	Title    string   `json:"title" binding:"required,min=1"`
	Label    string   `json:"label"`
	Order    int      `json:"order"`
	Required bool     `json:"required"`
	Type     string   `json:"type" binding:"required,oneof=text number select date image checkbox attachment"`
	Options  []string `json:"options"`
}

type createGroupReq struct {
	Title            string              `json:"title"`
	Order            int                 `json:"order"`
	ShowIfQuestionID *uint               `json:"show_if_question_id"`
	ShowIfCondition  string              `json:"show_if_condition"`
	ShowIfValue      string              `json:"show_if_value"`
	Questions        []createQuestionReq `json:"questions"`
}

type createSectionReq struct {
	Title       string           `json:"title" binding:"required,min=1"`
	Description string           `json:"description"`
	Order       int              `json:"order"`
	Groups      []createGroupReq `json:"groups"`
}

type createTemplateReq struct {
	Name        string             `json:"name" binding:"required,min=1"`
	Description string             `json:"description"`
	Sections    []createSectionReq `json:"sections"`
}

// CreateTemplate creates a template with its whole section/group/
// question tree in one transaction. Nested showIf references are
// taken as-is; the seeder and AddGroup are the validated entry points
// for conditional links.
func CreateTemplate(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	var req createTemplateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	t := models.Template{
		Name:        req.Name,
		Description: req.Description,
		Status:      "active",
		CreatedByID: &u.ID,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		for _, sreq := range req.Sections {
			sec := models.Section{
				TemplateID:  t.ID,
				Title:       sreq.Title,
				Description: sreq.Description,
				Order:       sreq.Order,
			}
			if err := tx.Create(&sec).Error; err != nil {
				return err
			}
			for _, greq := range sreq.Groups {
				g := models.Group{
					SectionID:        sec.ID,
					Title:            greq.Title,
					Order:            greq.Order,
					ShowIfQuestionID: greq.ShowIfQuestionID,
					ShowIfCondition:  greq.ShowIfCondition,
					ShowIfValue:      greq.ShowIfValue,
				}
				if err := tx.Create(&g).Error; err != nil {
					return err
				}
				for _, qreq := range greq.Questions {
					q := models.Question{
						GroupID:  g.ID,
						Title:    qreq.Title,
						Label:    qreq.Label,
						Order:    qreq.Order,
						Required: qreq.Required,
						Type:     qreq.Type,
					}
					if err := tx.Create(&q).Error; err != nil {
						return err
					}
					for i, opt := range qreq.Options {
						if err := tx.Create(&models.SelectOption{QuestionID: q.ID, Value: opt, Order: i}).Error; err != nil {
							return err
						}
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create template"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          t.ID,
		"name":        t.Name,
		"description": t.Description,
		"created_at":  t.CreatedAt,
	})
}

func ListTemplates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := config.DB.Model(&models.Template{}).Where("status <> 'deleted'")
	if s := c.Query("search"); s != "" {
		query = query.Where("name ILIKE ?", "%"+s+"%")
	}

	var total int64
	query.Count(&total)

	var templates []models.Template
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list templates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":      page,
		"limit":     limit,
		"total":     total,
		"templates": templates,
	})
}

// loadTemplateTree fetches a template with its ordered tree.
func loadTemplateTree(db *gorm.DB, id int) (models.Template, error) {
	var t models.Template
	err := db.
		Where("id = ? AND status <> 'deleted'", id).
		Preload("Sections", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Sections.Groups", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Sections.Groups.Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("Sections.Groups.Questions.SelectOptions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&t).Error
	return t, err
}

func GetTemplate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	t, err := loadTemplateTree(config.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Template not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load template"})
		return
	}

	c.JSON(http.StatusOK, t)
}

type updateTemplateReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func UpdateTemplate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var req updateTemplateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	res := config.DB.Model(&models.Template{}).
		Where("id = ? AND status <> 'deleted'", id).
		Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Template not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func setTemplateStatus(c *gin.Context, status string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	res := config.DB.Model(&models.Template{}).
		Where("id = ? AND status <> 'deleted'", id).
		Update("status", status)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Template not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": status})
}

// Soft delete, mirrored by the status filter on every read.
func DeleteTemplate(c *gin.Context)  { setTemplateStatus(c, "deleted") }
func ArchiveTemplate(c *gin.Context) { setTemplateStatus(c, "archived") }
func RestoreTemplate(c *gin.Context) { setTemplateStatus(c, "active") }

/* ========== Sections / groups / questions ========== */

func AddSection(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var t models.Template
	if err := config.DB.Where("id = ? AND status <> 'deleted'", id).First(&t).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Template not found"})
		return
	}

	var req createSectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	sec := models.Section{
		TemplateID:  t.ID,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := config.DB.Create(&sec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create section"})
		return
	}
	c.JSON(http.StatusCreated, sec)
}

// AddGroup validates that a showIf reference points at a question in
// the same template before accepting it.
func AddGroup(c *gin.Context) {
	sectionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || sectionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var sec models.Section
	if err := config.DB.First(&sec, sectionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Section not found"})
		return
	}

	var req createGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	if req.ShowIfQuestionID != nil {
		var count int64
		config.DB.Model(&models.Question{}).
			Joins("JOIN groups ON groups.id = questions.group_id").
			Joins("JOIN sections ON sections.id = groups.section_id").
			Where("questions.id = ? AND sections.template_id = ?", *req.ShowIfQuestionID, sec.TemplateID).
			Count(&count)
		if count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "showIf question does not belong to this template"})
			return
		}
	}

	g := models.Group{
		SectionID:        sec.ID,
		Title:            req.Title,
		Order:            req.Order,
		ShowIfQuestionID: req.ShowIfQuestionID,
		ShowIfCondition:  req.ShowIfCondition,
		ShowIfValue:      req.ShowIfValue,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&g).Error; err != nil {
			return err
		}
		for _, qreq := range req.Questions {
			q := models.Question{
				GroupID:  g.ID,
				Title:    qreq.Title,
				Label:    qreq.Label,
				Order:    qreq.Order,
				Required: qreq.Required,
				Type:     qreq.Type,
			}
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
			for i, opt := range qreq.Options {
				if err := tx.Create(&models.SelectOption{QuestionID: q.ID, Value: opt, Order: i}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create group"})
		return
	}
	c.JSON(http.StatusCreated, g)
}

func AddQuestion(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil || groupID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var g models.Group
	if err := config.DB.First(&g, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Group not found"})
		return
	}

	var req createQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	q := models.Question{
		GroupID:  g.ID,
		Title:    req.Title,
		Label:    req.Label,
		Order:    req.Order,
		Required: req.Required,
		Type:     req.Type,
	}
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		for i, opt := range req.Options {
			if err := tx.Create(&models.SelectOption{QuestionID: q.ID, Value: opt, Order: i}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create question"})
		return
	}
	c.JSON(http.StatusCreated, q)
}

type updateQuestionReq struct {
	Title    *string `json:"title"`
	Label    *string `json:"label"`
	Required *bool   `json:"required"`
}

func UpdateQuestion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var req updateQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.Required != nil {
		updates["required"] = *req.Required
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}

	res := config.DB.Model(&models.Question{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func DeleteQuestion(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	res := config.DB.Delete(&models.Question{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

/* ========== Reorder ========== */

type reorderReq struct {
	Order []uint `json:"order" binding:"required,min=1,dive,required"`
}

// reorder rewrites sort_order for the given ids inside one parent,
// after checking all ids belong to that parent.
func reorder(c *gin.Context, model interface{}, parentColumn string, parentID uint) {
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	var count int64
	if err := config.DB.Model(model).
		Where(parentColumn+" = ? AND id IN ?", parentID, req.Order).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not validate order"})
		return
	}
	if count != int64(len(req.Order)) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order list contains foreign ids"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for idx, id := range req.Order {
			if err := tx.Model(model).
				Where("id = ? AND "+parentColumn+" = ?", id, parentID).
				Update("sort_order", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Reorder failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func ReorderSections(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	reorder(c, &models.Section{}, "template_id", uint(id))
}

func ReorderGroups(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	reorder(c, &models.Group{}, "section_id", uint(id))
}

func ReorderQuestions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}
	reorder(c, &models.Question{}, "group_id", uint(id))
}
