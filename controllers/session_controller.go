package controllers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/onboard-hq/onboard-server/config"
	"github.com/onboard-hq/onboard-server/formfill"
	"github.com/onboard-hq/onboard-server/middleware"
	"github.com/onboard-hq/onboard-server/models"
)

// A fill session hosts one user's wizard state server-side: the
// formfill store plus an autosaver writing through to submissions.
type fillSession struct {
	id         string
	userID     uint
	templateID uint
	store      *formfill.Store
	lastSeen   time.Time
}

type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*fillSession
	ttl      time.Duration
}

func newSessionManager(ttl time.Duration) *sessionManager {
	m := &sessionManager{sessions: make(map[string]*fillSession), ttl: ttl}
	go m.cleanup()
	return m
}

func (m *sessionManager) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		m.evictExpired()
	}
}

// evictExpired drops idle sessions. The stores are closed after the
// lock is released: Close waits on in-flight saves, and one slow save
// must not stall lookups for every other session.
func (m *sessionManager) evictExpired() {
	m.mu.Lock()
	var expired []*fillSession
	for id, s := range m.sessions {
		if time.Since(s.lastSeen) > m.ttl {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.store.Close() // settle pending saves before discarding
	}
}

func (m *sessionManager) get(id string, userID uint) *fillSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.userID != userID {
		return nil
	}
	s.lastSeen = time.Now()
	return s
}

func (m *sessionManager) put(s *fillSession) {
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
}

func (m *sessionManager) drop(id string) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		s.store.Close()
		delete(m.sessions, id)
	}
	m.mu.Unlock()
}

// Sessions idle for 30 minutes are flushed and discarded.
var fillSessions = newSessionManager(30 * time.Minute)

type startSessionReq struct {
	TemplateID uint `json:"template_id" binding:"required"`
}

// StartFillSession loads the filled template into a new store. The
// store's saver runs the same update-or-create path as UpdateAnswer,
// one second after the last edit to each question.
func StartFillSession(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	var req startSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	var assignment models.Assignment
	if err := config.DB.
		Where("app_user_id = ? AND template_id = ?", u.ID, req.TemplateID).
		First(&assignment).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "Template is not assigned to you"})
		return
	}

	t, err := loadTemplateTree(config.DB, int(req.TemplateID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Template not found"})
		return
	}
	answers, err := userAnswers(config.DB, t.ID, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load answers"})
		return
	}

	userID := u.ID
	saver := formfill.SaverFunc(func(questionID uint, value string) error {
		_, _, serr := updateOrCreateSubmission(config.DB, questionID, userID, value)
		if serr == nil {
			if templateID, terr := templateIDForQuestion(config.DB, questionID); terr == nil {
				config.DB.Model(&models.Assignment{}).
					Where("app_user_id = ? AND template_id = ? AND status = ?", userID, templateID, models.AssignmentPending).
					Update("status", models.AssignmentInProgress)
			}
		}
		return serr
	})

	store := formfill.NewStore(formfill.NewAutosaver(saver, formfill.DefaultDebounce))
	store.Load(buildFormTemplate(t, answers))

	s := &fillSession{
		id:         uuid.New().String(),
		userID:     u.ID,
		templateID: t.ID,
		store:      store,
		lastSeen:   time.Now(),
	}
	fillSessions.put(s)

	c.JSON(http.StatusCreated, gin.H{
		"session_id": s.id,
		"template":   store.Template(),
		"state":      sessionState(s),
	})
}

// sessionState is the view consumed by the wizard UI.
func sessionState(s *fillSession) gin.H {
	t := s.store.Template()
	data := s.store.FormData()
	idx := s.store.CurrentIndex()

	sections := make([]gin.H, 0, len(t.Sections))
	for _, sec := range t.Sections {
		visible := []uint{}
		for _, g := range formfill.VisibleGroups(sec.Groups, data) {
			visible = append(visible, g.ID)
		}
		sections = append(sections, gin.H{
			"id":             sec.ID,
			"progress":       formfill.ComputeSection(sec, data),
			"visible_groups": visible,
		})
	}

	saveErrors := gin.H{}
	for id := range data {
		if err := s.store.SaveError(id); err != nil {
			saveErrors[strconv.FormatUint(uint64(id), 10)] = err.Error()
		}
	}

	return gin.H{
		"section_index":      idx,
		"completed_sections": s.store.CompletedSections(),
		"invalid_questions":  s.store.InvalidQuestions(),
		"form_data":          data,
		"sections":           sections,
		"save_errors":        saveErrors,
	}
}

func sessionFromParam(c *gin.Context) *fillSession {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)
	s := fillSessions.get(c.Param("id"), u.ID)
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Session not found"})
		return nil
	}
	return s
}

// SessionAnswer applies an optimistic field update; persistence
// happens through the debounced saver.
func SessionAnswer(c *gin.Context) {
	s := sessionFromParam(c)
	if s == nil {
		return
	}

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

	s.store.SetField(q.ID, value)
	c.JSON(http.StatusOK, gin.H{"state": sessionState(s)})
}

func SessionNext(c *gin.Context) {
	s := sessionFromParam(c)
	if s == nil {
		return
	}
	if err := s.store.Next(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "state": sessionState(s)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": sessionState(s)})
}

func SessionPrevious(c *gin.Context) {
	s := sessionFromParam(c)
	if s == nil {
		return
	}
	s.store.Previous()
	c.JSON(http.StatusOK, gin.H{"state": sessionState(s)})
}

type jumpReq struct {
	Index int `json:"index"`
}

func SessionJump(c *gin.Context) {
	s := sessionFromParam(c)
	if s == nil {
		return
	}
	var req jumpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	s.store.Jump(req.Index)
	c.JSON(http.StatusOK, gin.H{"state": sessionState(s)})
}

// SessionSubmit gates on every section's completeness, settles all
// pending saves and transitions the assignment to submitted.
func SessionSubmit(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)
	s := sessionFromParam(c)
	if s == nil {
		return
	}

	if err := s.store.Submit(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "state": sessionState(s)})
		return
	}
	s.store.Close()

	if err := config.DB.Model(&models.Assignment{}).
		Where("app_user_id = ? AND template_id = ?", u.ID, s.templateID).
		Update("status", models.AssignmentSubmitted).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not submit"})
		return
	}

	fillSessions.drop(s.id)
	c.JSON(http.StatusOK, gin.H{"message": "submitted"})
}

// CloseFillSession flushes and discards the session.
func CloseFillSession(c *gin.Context) {
	s := sessionFromParam(c)
	if s == nil {
		return
	}
	fillSessions.drop(s.id)
	c.JSON(http.StatusOK, gin.H{"message": "closed"})
}
