// Package seeder imports JotForm form exports into the template
// content model: one section per page break, one group per question,
// with show/hide conditions becoming showIf links between groups.
package seeder

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/onboard-hq/onboard-server/models"
)

type Export struct {
	Form struct {
		Title string `json:"title"`
	} `json:"form"`
	Questions  map[string]Question `json:"questions"`
	Conditions []Condition         `json:"conditions"`
}

// Question is one JotForm field. Order and Required come over as
// strings in the export.
type Question struct {
	QID      string `json:"qid"`
	Type     string `json:"type"`
	Text     string `json:"text"`
	Order    string `json:"order"`
	Required string `json:"required"` // "Yes" / "No"
	Options  string `json:"options"`  // pipe separated
}

// Condition shows the target question while the controlling field's
// value matches.
type Condition struct {
	Target   string `json:"target"`
	Field    string `json:"field"`
	Operator string `json:"operator"` // "equals" | "notEquals"
	Value    string `json:"value"`
}

// Control-type mapping. Anything absent here is skipped with a log
// line rather than failing the import.
var typeMap = map[string]string{
	"control_textbox":    models.QuestionText,
	"control_textarea":   models.QuestionText,
	"control_email":      models.QuestionText,
	"control_number":     models.QuestionNumber,
	"control_dropdown":   models.QuestionSelect,
	"control_radio":      models.QuestionSelect,
	"control_datetime":   models.QuestionDate,
	"control_checkbox":   models.QuestionCheckbox,
	"control_fileupload": models.QuestionAttachment,
	"control_image":      models.QuestionImage,
}

// section boundaries; headers double as section titles
const (
	controlPageBreak = "control_pagebreak"
	controlHead      = "control_head"
)

func ParseExport(data []byte) (*Export, error) {
	var ex Export
	if err := json.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("invalid JotForm export: %w", err)
	}
	if ex.Form.Title == "" {
		return nil, fmt.Errorf("export has no form title")
	}
	return &ex, nil
}

// sortedQuestions returns the export's fields in form order.
func sortedQuestions(ex *Export) []Question {
	qs := make([]Question, 0, len(ex.Questions))
	for _, q := range ex.Questions {
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool {
		oi, _ := strconv.Atoi(qs[i].Order)
		oj, _ := strconv.Atoi(qs[j].Order)
		return oi < oj
	})
	return qs
}

// Import creates the full template tree in one transaction and
// returns the new template. Conditions are linked in a second pass
// once every question has a row id.
func Import(db *gorm.DB, ex *Export) (models.Template, error) {
	t := models.Template{
		Name:   ex.Form.Title,
		Status: "active",
	}

	// qid -> created row, for the condition pass
	questionByQID := make(map[string]models.Question)
	groupByTargetQID := make(map[string]models.Group)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		section := models.Section{TemplateID: t.ID, Title: "General", Order: 0}
		sectionCreated := false
		sectionOrder := 0
		groupOrder := 0

		ensureSection := func() error {
			if sectionCreated {
				return nil
			}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}
			sectionCreated = true
			return nil
		}

		for _, q := range sortedQuestions(ex) {
			if q.Type == controlPageBreak || q.Type == controlHead {
				title := strings.TrimSpace(q.Text)
				if title == "" {
					title = fmt.Sprintf("Page %d", sectionOrder+1)
				}
				section = models.Section{TemplateID: t.ID, Title: title, Order: sectionOrder}
				sectionCreated = false
				sectionOrder++
				groupOrder = 0
				continue
			}

			qType, ok := typeMap[q.Type]
			if !ok {
				log.Printf("seeder: skipping unsupported field %q (qid %s)", q.Type, q.QID)
				continue
			}
			if err := ensureSection(); err != nil {
				return err
			}

			g := models.Group{
				SectionID: section.ID,
				Title:     q.Text,
				Order:     groupOrder,
			}
			if err := tx.Create(&g).Error; err != nil {
				return err
			}
			groupOrder++

			question := models.Question{
				GroupID:  g.ID,
				Title:    q.Text,
				Label:    q.Text,
				Required: q.Required == "Yes",
				Type:     qType,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			if qType == models.QuestionSelect && q.Options != "" {
				for i, opt := range strings.Split(q.Options, "|") {
					so := models.SelectOption{QuestionID: question.ID, Value: opt, Order: i}
					if err := tx.Create(&so).Error; err != nil {
						return err
					}
				}
			}

			questionByQID[q.QID] = question
			groupByTargetQID[q.QID] = g
		}

		for _, cond := range ex.Conditions {
			g, ok := groupByTargetQID[cond.Target]
			if !ok {
				log.Printf("seeder: condition targets unknown qid %s, skipped", cond.Target)
				continue
			}
			ctrl, ok := questionByQID[cond.Field]
			if !ok {
				log.Printf("seeder: condition references unknown qid %s, skipped", cond.Field)
				continue
			}

			condition := cond.Operator
			switch cond.Operator {
			case "equals":
				condition = "equals"
			case "notEquals":
				condition = "not equals"
			default:
				// stored verbatim; the visibility filter hides groups
				// with conditions it does not recognize
				log.Printf("seeder: unknown operator %q on qid %s, stored as-is", cond.Operator, cond.Target)
			}

			if err := tx.Model(&models.Group{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
				"show_if_question_id": ctrl.ID,
				"show_if_condition":   condition,
				"show_if_value":       cond.Value,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.Template{}, err
	}
	return t, nil
}

// ImportFile reads and imports one export file.
func ImportFile(db *gorm.DB, path string) (models.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Template{}, err
	}
	ex, err := ParseExport(data)
	if err != nil {
		return models.Template{}, err
	}
	return Import(db, ex)
}
