// Package formfill drives the multi-step onboarding form: conditional
// group visibility, per-section progress, debounced autosave and the
// wizard navigation state. It is pure in-memory logic; persistence is
// injected through the Saver interface.
package formfill

// Question types understood by the engine. They mirror the question
// model but are kept as plain strings so the package stays free of
// gorm imports.
const (
	TypeText       = "text"
	TypeNumber     = "number"
	TypeSelect     = "select"
	TypeDate       = "date"
	TypeImage      = "image"
	TypeCheckbox   = "checkbox"
	TypeAttachment = "attachment"
)

const (
	CondEquals    = "equals"
	CondNotEquals = "not equals"
)

// FormData is the flat answer map keyed by question id. A missing key
// means the question was never answered; an empty string means it was
// answered and cleared. Visibility distinguishes the two, progress
// treats both as unanswered.
type FormData map[uint]string

type ShowIf struct {
	QuestionID uint   `json:"question_id"`
	Condition  string `json:"condition"`
	Value      string `json:"value"`
}

type Question struct {
	ID       uint     `json:"id"`
	Title    string   `json:"title"`
	Label    string   `json:"label"`
	Order    int      `json:"order"`
	Required bool     `json:"required"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Answer   *string  `json:"answer,omitempty"`
}

type Group struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Order     int        `json:"order"`
	ShowIf    *ShowIf    `json:"show_if,omitempty"`
	Questions []Question `json:"questions"`
}

type Section struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Order       int     `json:"order"`
	Groups      []Group `json:"groups"`
}

type Template struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`
}
