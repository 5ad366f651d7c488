package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/onboard-hq/onboard-server/config"
	"github.com/onboard-hq/onboard-server/models"
)

type exportRequest struct {
	Format             string  `json:"format"` // csv (default) or xlsx
	RangeFrom          *string `json:"range_from,omitempty"`
	RangeTo            *string `json:"range_to,omitempty"`
	IncludeAttachments bool    `json:"include_attachments"`
}

// POST /api/admin/templates/:id/export
func CreateExport(c *gin.Context) {
	id := c.Param("id")

	var t models.Template
	if err := config.DB.First(&t, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "DB error"})
		return
	}

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}
	if req.Format == "" {
		req.Format = "csv"
	}
	if req.Format != "csv" && req.Format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unsupported format"})
		return
	}

	var fromPtr, toPtr *time.Time
	if req.RangeFrom != nil {
		if ts, err := time.Parse(time.RFC3339, *req.RangeFrom); err == nil {
			fromPtr = &ts
		}
	}
	if req.RangeTo != nil {
		if ts, err := time.Parse(time.RFC3339, *req.RangeTo); err == nil {
			toPtr = &ts
		}
	}

	jobID := uuid.New().String()
	job := models.ExportJob{
		JobID:              jobID,
		TemplateID:         t.ID,
		Format:             req.Format,
		RangeFrom:          fromPtr,
		RangeTo:            toPtr,
		IncludeAttachments: req.IncludeAttachments,
		Status:             "queued",
	}
	config.DB.Create(&job)

	go processExportJob(jobID)

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "queued",
	})
}

// GET /api/exports/:job_id
func GetExport(c *gin.Context) {
	jobID := c.Param("job_id")
	var job models.ExportJob
	if err := config.DB.First(&job, "job_id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "DB error"})
		return
	}

	if job.Status == "done" && job.FilePath != nil {
		c.FileAttachment(*job.FilePath, path.Base(*job.FilePath))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": job.JobID,
		"status": job.Status,
		"error":  job.ErrorMsg,
	})
}

type exportRow struct {
	CustomerName  string
	CustomerEmail string
	QuestionTitle string
	QuestionType  string
	Answer        string
	AnsweredAt    time.Time
}

func failExport(job *models.ExportJob, err error) {
	em := err.Error()
	config.DB.Model(job).Updates(map[string]interface{}{"status": "failed", "error_msg": em})
}

func processExportJob(jobID string) {
	var job models.ExportJob
	if err := config.DB.First(&job, "job_id = ?", jobID).Error; err != nil {
		return
	}
	config.DB.Model(&job).Update("status", "processing")

	q := config.DB.Table("submissions").
		Select(`app_users.name AS customer_name, app_users.email AS customer_email,
			questions.title AS question_title, questions.type AS question_type,
			submissions.answer AS answer, submissions.updated_at AS answered_at`).
		Joins("JOIN app_users ON app_users.id = submissions.answered_by_id").
		Joins("JOIN questions ON questions.id = submissions.question_id").
		Joins("JOIN groups ON groups.id = questions.group_id").
		Joins("JOIN sections ON sections.id = groups.section_id").
		Where("sections.template_id = ?", job.TemplateID).
		Order("app_users.id, questions.id")
	if job.RangeFrom != nil {
		q = q.Where("submissions.updated_at >= ?", job.RangeFrom)
	}
	if job.RangeTo != nil {
		q = q.Where("submissions.updated_at <= ?", job.RangeTo)
	}
	if !job.IncludeAttachments {
		q = q.Where("questions.type NOT IN ?", []string{models.QuestionImage, models.QuestionAttachment})
	}

	var rows []exportRow
	if err := q.Scan(&rows).Error; err != nil {
		failExport(&job, err)
		return
	}

	outDir := "./exports"
	os.MkdirAll(outDir, 0755)

	var outPath string
	var err error
	if job.Format == "xlsx" {
		outPath = path.Join(outDir, fmt.Sprintf("export_%s.xlsx", job.JobID))
		err = writeXLSX(outPath, rows)
	} else {
		outPath = path.Join(outDir, fmt.Sprintf("export_%s.csv", job.JobID))
		err = writeCSV(outPath, rows)
	}
	if err != nil {
		failExport(&job, err)
		return
	}

	config.DB.Model(&job).Updates(map[string]interface{}{"status": "done", "file_path": outPath})
}

var exportHeader = []string{"customer", "email", "question", "type", "answer", "answered_at"}

func writeCSV(outPath string, rows []exportRow) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			r.CustomerName, r.CustomerEmail, r.QuestionTitle, r.QuestionType,
			r.Answer, r.AnsweredAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeXLSX(outPath string, rows []exportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Submissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for ri, r := range rows {
		values := []interface{}{
			r.CustomerName, r.CustomerEmail, r.QuestionTitle, r.QuestionType,
			r.Answer, r.AnsweredAt.Format(time.RFC3339),
		}
		for ci, v := range values {
			cell, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	return f.SaveAs(outPath)
}
