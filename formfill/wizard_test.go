package formfill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStepTemplate() Template {
	return Template{
		ID:   1,
		Name: "Onboarding",
		Sections: []Section{
			{ID: 10, Title: "Company", Groups: []Group{
				{ID: 100, Questions: []Question{
					{ID: 1, Label: "Company name", Type: TypeText, Required: true},
					{ID: 2, Label: "Website", Type: TypeText},
				}},
			}},
			{ID: 20, Title: "Billing", Groups: []Group{
				{ID: 200, Questions: []Question{
					{ID: 3, Label: "VAT number", Type: TypeText, Required: true},
				}},
			}},
		},
	}
}

func TestStore_NextBlockedUntilRequiredAnswered(t *testing.T) {
	s := NewStore(nil)
	s.Load(twoStepTemplate())

	err := s.Next()
	var inc *IncompleteError
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, uint(10), inc.SectionID)
	assert.Contains(t, err.Error(), "Company name")
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, []uint{1}, s.InvalidQuestions())

	s.SetField(1, "Acme")
	require.NoError(t, s.Next())
	assert.Equal(t, 1, s.CurrentIndex())
	assert.Equal(t, []uint{10}, s.CompletedSections())
	assert.Empty(t, s.InvalidQuestions())
}

func TestStore_NextAtLastSectionStaysPut(t *testing.T) {
	s := NewStore(nil)
	s.Load(twoStepTemplate())
	s.SetField(1, "Acme")
	require.NoError(t, s.Next())

	s.SetField(3, "VAT-1")
	require.NoError(t, s.Next())
	assert.Equal(t, 1, s.CurrentIndex())
	assert.ElementsMatch(t, []uint{10, 20}, s.CompletedSections())
}

func TestStore_PreviousAndJump(t *testing.T) {
	s := NewStore(nil)
	s.Load(twoStepTemplate())

	s.Previous()
	assert.Equal(t, 0, s.CurrentIndex())

	// jump skips the completeness gate and clears highlights
	assert.Error(t, s.Next())
	assert.NotEmpty(t, s.InvalidQuestions())
	s.Jump(1)
	assert.Equal(t, 1, s.CurrentIndex())
	assert.Empty(t, s.InvalidQuestions())

	s.Jump(5)
	assert.Equal(t, 1, s.CurrentIndex())
	s.Jump(-1)
	assert.Equal(t, 1, s.CurrentIndex())

	s.Previous()
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestStore_SubmitChecksEverySection(t *testing.T) {
	s := NewStore(nil)
	s.Load(twoStepTemplate())
	s.SetField(1, "Acme")

	err := s.Submit()
	var inc *IncompleteError
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, uint(20), inc.SectionID)
	assert.Equal(t, []uint{3}, s.InvalidQuestions())

	s.SetField(3, "VAT-1")
	require.NoError(t, s.Submit())
	assert.ElementsMatch(t, []uint{10, 20}, s.CompletedSections())
}

func TestStore_SetFieldClearsInvalidAndSchedulesSave(t *testing.T) {
	saver := &recordingSaver{}
	s := NewStore(NewAutosaver(saver, 10*time.Millisecond))
	s.Load(twoStepTemplate())

	assert.Error(t, s.Next())
	assert.Equal(t, []uint{1}, s.InvalidQuestions())

	s.SetField(1, "Acme")
	assert.Empty(t, s.InvalidQuestions())

	s.Close()
	calls := saver.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, savedCall{1, "Acme"}, calls[0])
}

func TestStore_LoadSeedsAnswersFromTemplate(t *testing.T) {
	tmpl := twoStepTemplate()
	v := "Acme"
	tmpl.Sections[0].Groups[0].Questions[0].Answer = &v

	s := NewStore(nil)
	s.Load(tmpl)
	assert.Equal(t, FormData{1: "Acme"}, s.FormData())
}

// A load that lands after the user already edited a field rebuilds the
// answer map from the template and drops the edit. Known behavior,
// documented on Store.Load.
func TestStore_LateLoadOverwritesEdits(t *testing.T) {
	s := NewStore(nil)
	s.Load(twoStepTemplate())
	s.SetField(1, "typed before load finished")

	s.Load(twoStepTemplate())
	_, ok := s.FormData()[1]
	assert.False(t, ok)
}
