package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onboard-hq/onboard-server/config"
	"github.com/onboard-hq/onboard-server/formfill"
	"github.com/onboard-hq/onboard-server/middleware"
	"github.com/onboard-hq/onboard-server/models"
)

// buildFormTemplate shapes a loaded template tree into the formfill
// DTO, merging the user's submissions onto the questions.
func buildFormTemplate(t models.Template, answers map[uint]string) formfill.Template {
	out := formfill.Template{ID: t.ID, Name: t.Name}
	for _, sec := range t.Sections {
		fs := formfill.Section{
			ID:          sec.ID,
			Title:       sec.Title,
			Description: sec.Description,
			Order:       sec.Order,
		}
		for _, g := range sec.Groups {
			fg := formfill.Group{ID: g.ID, Title: g.Title, Order: g.Order}
			if g.ShowIfQuestionID != nil {
				fg.ShowIf = &formfill.ShowIf{
					QuestionID: *g.ShowIfQuestionID,
					Condition:  g.ShowIfCondition,
					Value:      g.ShowIfValue,
				}
			}
			for _, q := range g.Questions {
				fq := formfill.Question{
					ID:       q.ID,
					Title:    q.Title,
					Label:    q.Label,
					Order:    q.Order,
					Required: q.Required,
					Type:     q.Type,
				}
				for _, opt := range q.SelectOptions {
					fq.Options = append(fq.Options, opt.Value)
				}
				if v, ok := answers[q.ID]; ok {
					ans := v
					fq.Answer = &ans
				}
				fg.Questions = append(fg.Questions, fq)
			}
			fs.Groups = append(fs.Groups, fg)
		}
		out.Sections = append(out.Sections, fs)
	}
	return out
}

// userAnswers loads the flat answer map for one user across a
// template's questions.
func userAnswers(db *gorm.DB, templateID uint, userID uint) (map[uint]string, error) {
	var rows []models.Submission
	err := db.
		Joins("JOIN questions ON questions.id = submissions.question_id").
		Joins("JOIN groups ON groups.id = questions.group_id").
		Joins("JOIN sections ON sections.id = groups.section_id").
		Where("sections.template_id = ? AND submissions.answered_by_id = ?", templateID, userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	answers := make(map[uint]string, len(rows))
	for _, r := range rows {
		answers[r.QuestionID] = r.Answer
	}
	return answers, nil
}

// GetFilledTemplate returns the template tree with the current user's
// answers merged in, plus per-section progress and the currently
// visible group ids.
func GetFilledTemplate(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

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

	answers, err := userAnswers(config.DB, t.ID, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load answers"})
		return
	}

	ft := buildFormTemplate(t, answers)
	data := formfill.FormData(answers)

	sections := make([]gin.H, 0, len(ft.Sections))
	for _, sec := range ft.Sections {
		visible := []uint{}
		for _, g := range formfill.VisibleGroups(sec.Groups, data) {
			visible = append(visible, g.ID)
		}
		sections = append(sections, gin.H{
			"section":        sec,
			"progress":       formfill.ComputeSection(sec, data),
			"visible_groups": visible,
		})
	}

	percent, complete := formfill.ComputeTemplate(ft, data)
	c.JSON(http.StatusOK, gin.H{
		"id":       ft.ID,
		"name":     ft.Name,
		"sections": sections,
		"percent":  percent,
		"complete": complete,
	})
}

type answerReq struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Value      string `json:"value"`
}

// normalizeAnswer applies the per-type storage rules: checkboxes are
// stored as the literal strings "true"/"false", dates as yyyy-MM-dd.
func normalizeAnswer(qType, value string) (string, error) {
	switch qType {
	case models.QuestionCheckbox:
		if value == "true" || value == "1" {
			return "true", nil
		}
		return "false", nil
	case models.QuestionDate:
		if value == "" {
			return "", nil
		}
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if t, err := time.Parse(layout, value); err == nil {
				return t.Format("2006-01-02"), nil
			}
		}
		return "", errors.New("invalid date")
	}
	return value, nil
}

// updateOrCreateSubmission looks up the (question, user) row and
// updates it, creating one only when none exists. The at-most-one
// invariant lives in this lookup.
func updateOrCreateSubmission(db *gorm.DB, questionID, userID uint, value string) (sub models.Submission, action string, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		e := tx.Where("question_id = ? AND answered_by_id = ?", questionID, userID).First(&sub).Error
		if e == nil {
			action = "updated"
			return tx.Model(&sub).Update("answer", value).Error
		}
		if !errors.Is(e, gorm.ErrRecordNotFound) {
			return e
		}
		action = "created"
		sub = models.Submission{QuestionID: questionID, AnsweredByID: userID, Answer: value}
		return tx.Create(&sub).Error
	})
	return sub, action, err
}

// templateIDForQuestion resolves the owning template.
func templateIDForQuestion(db *gorm.DB, questionID uint) (uint, error) {
	var sec models.Section
	err := db.
		Joins("JOIN groups ON groups.section_id = sections.id").
		Joins("JOIN questions ON questions.group_id = groups.id").
		Where("questions.id = ?", questionID).
		First(&sec).Error
	return sec.TemplateID, err
}

// UpdateAnswer is the autosave target: update-or-create the
// submission and flip a pending assignment to inProgress on the first
// write.
func UpdateAnswer(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	var req answerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	var q models.Question
	if err := config.DB.First(&q, req.QuestionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Question not found"})
		return
	}

	value, err := normalizeAnswer(q.Type, req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid value for question type"})
		return
	}

	sub, action, err := updateOrCreateSubmission(config.DB, q.ID, u.ID, value)
	if err != nil {
		log.Printf("update answer failed (question %d): %v", q.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save answer"})
		return
	}

	if templateID, terr := templateIDForQuestion(config.DB, q.ID); terr == nil {
		config.DB.Model(&models.Assignment{}).
			Where("app_user_id = ? AND template_id = ? AND status = ?", u.ID, templateID, models.AssignmentPending).
			Update("status", models.AssignmentInProgress)
	}

	c.JSON(http.StatusOK, gin.H{"submission": sub, "action": action})
}

// SubmitAssignment transitions the assignment to submitted, but only
// when every section of the template passes the completeness check.
// Required questions hidden by a failed showIf still count; rejecting
// on them mirrors the completeness rule exactly.
func SubmitAssignment(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var assignment models.Assignment
	if err := config.DB.
		Where("app_user_id = ? AND template_id = ?", u.ID, id).
		First(&assignment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Assignment not found"})
		return
	}

	t, err := loadTemplateTree(config.DB, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Template not found"})
		return
	}

	answers, err := userAnswers(config.DB, t.ID, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load answers"})
		return
	}

	ft := buildFormTemplate(t, answers)
	data := formfill.FormData(answers)
	for _, sec := range ft.Sections {
		p := formfill.ComputeSection(sec, data)
		if !p.Complete {
			labels := make([]string, 0, len(p.Unmet))
			ids := make([]uint, 0, len(p.Unmet))
			for _, q := range p.Unmet {
				l := q.Label
				if l == "" {
					l = q.Title
				}
				labels = append(labels, l)
				ids = append(ids, q.ID)
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"message":      "Required questions are unanswered",
				"section_id":   sec.ID,
				"unmet_labels": labels,
				"unmet_ids":    ids,
			})
			return
		}
	}

	if err := config.DB.Model(&assignment).
		Update("status", models.AssignmentSubmitted).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not submit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "submitted", "assignment_id": assignment.ID})
}

// MyAssignments lists the caller's assignments with live progress.
func MyAssignments(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	var assignments []models.Assignment
	if err := config.DB.
		Preload("Template").
		Where("app_user_id = ?", u.ID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load assignments"})
		return
	}

	out := []gin.H{}
	for _, a := range assignments {
		entry := gin.H{
			"id":          a.ID,
			"template_id": a.TemplateID,
			"template":    a.Template.Name,
			"status":      a.Status,
			"created_at":  a.CreatedAt,
		}
		if t, err := loadTemplateTree(config.DB, int(a.TemplateID)); err == nil {
			if answers, aerr := userAnswers(config.DB, t.ID, u.ID); aerr == nil {
				ft := buildFormTemplate(t, answers)
				percent, complete := formfill.ComputeTemplate(ft, formfill.FormData(answers))
				entry["percent"] = percent
				entry["complete"] = complete
			}
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, gin.H{"assignments": out})
}
