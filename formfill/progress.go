package formfill

import "math"

type SectionProgress struct {
	Total    int        `json:"total"`
	Answered int        `json:"answered"`
	Percent  int        `json:"percent"`
	Complete bool       `json:"complete"`
	Unmet    []Question `json:"unmet,omitempty"` // required questions without an answer
}

// IsAnswered reports whether a question holds a usable value: present,
// non-empty, and for checkboxes strictly "true".
func IsAnswered(q Question, data FormData) bool {
	v, ok := data[q.ID]
	if !ok || v == "" {
		return false
	}
	if q.Type == TypeCheckbox {
		return v == "true"
	}
	return true
}

// ComputeSection walks every group's questions, hidden groups
// included: a required question behind a failed showIf still counts
// against completeness. Inconsistent with the visibility filter, and
// deliberately left that way.
//
// Percent considers all questions, Complete only the required ones.
// A section with zero questions is 100% and complete.
func ComputeSection(s Section, data FormData) SectionProgress {
	p := SectionProgress{Complete: true}
	for _, g := range s.Groups {
		for _, q := range g.Questions {
			p.Total++
			if IsAnswered(q, data) {
				p.Answered++
			} else if q.Required {
				p.Complete = false
				p.Unmet = append(p.Unmet, q)
			}
		}
	}
	if p.Total == 0 {
		p.Percent = 100
		return p
	}
	p.Percent = int(math.Round(100 * float64(p.Answered) / float64(p.Total)))
	return p
}

// ComputeTemplate aggregates progress over all sections.
func ComputeTemplate(t Template, data FormData) (percent int, complete bool) {
	total, answered := 0, 0
	complete = true
	for _, s := range t.Sections {
		p := ComputeSection(s, data)
		total += p.Total
		answered += p.Answered
		if !p.Complete {
			complete = false
		}
	}
	if total == 0 {
		return 100, complete
	}
	return int(math.Round(100 * float64(answered) / float64(total))), complete
}
