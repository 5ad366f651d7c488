package formfill

// Visible reports whether a group should be rendered for the current
// answers. A group without showIf is always shown. With showIf, the
// controlling question's answer is compared as a string:
//
//	equals     -> shown iff answered and equal
//	not equals -> shown iff unanswered or different
//
// A missing question reference or an unrecognized condition hides the
// group. An unanswered controlling question never satisfies "equals",
// so dependent groups stay hidden until it is answered.
func Visible(g Group, data FormData) bool {
	if g.ShowIf == nil {
		return true
	}
	if g.ShowIf.QuestionID == 0 {
		return false
	}
	v, answered := data[g.ShowIf.QuestionID]
	switch g.ShowIf.Condition {
	case CondEquals:
		return answered && v == g.ShowIf.Value
	case CondNotEquals:
		return !answered || v != g.ShowIf.Value
	}
	// Unknown condition falls through to hidden. Kept as-is: changing
	// it silently would also change which groups render.
	return false
}

// VisibleGroups filters groups by Visible, preserving relative order.
func VisibleGroups(groups []Group, data FormData) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if Visible(g, data) {
			out = append(out, g)
		}
	}
	return out
}
