package form

import (
	"testing"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFields() []models.Field {
	return []models.Field{
		{ID: 1, Label: "Nombre", Type: models.FieldText, Required: true},
		{ID: 2, Label: "Personas", Type: models.FieldNumber, Required: true},
		{ID: 3, Label: "Mesa", Type: models.FieldSelect, Options: []string{"A", "B", "A"}},
		{ID: 4, Label: "Vendedor", Type: models.FieldText, IsInternal: true},
	}
}

func TestBuildEditableState_OnlyPublicLabels(t *testing.T) {
	answers := BuildEditableState(sampleFields())

	assert.Equal(t, Answers{"Nombre": "", "Personas": "", "Mesa": ""}, answers)
}

func TestApplyPrefill_InternalField(t *testing.T) {
	fields := sampleFields()
	answers := BuildEditableState(fields)

	ok := ApplyPrefill(fields, answers, 4, "Café 5")

	assert.True(t, ok)
	assert.Equal(t, "Café 5", answers["Vendedor"])
}

func TestApplyPrefill_UnknownFieldIgnored(t *testing.T) {
	fields := sampleFields()
	answers := BuildEditableState(fields)

	assert.False(t, ApplyPrefill(fields, answers, 42, "x"))
	assert.False(t, ApplyPrefill(fields, answers, 4, ""))
	assert.NotContains(t, answers, "Vendedor")
}

func TestRender_SelectChoicesVerbatim(t *testing.T) {
	fields := sampleFields()

	controls := Render(fields, BuildEditableState(fields), nil)

	require.Len(t, controls, 3)
	assert.Equal(t, "text", controls[0].Input)
	assert.Equal(t, "number", controls[1].Input)
	assert.Equal(t, "select", controls[2].Input)
	assert.Equal(t, []string{"A", "B", "A"}, controls[2].Choices)
}

func TestRender_PrefilledInternalFieldIsDisabled(t *testing.T) {
	fields := sampleFields()
	answers := BuildEditableState(fields)
	id := int64(4)
	ApplyPrefill(fields, answers, id, "Ana")

	controls := Render(fields, answers, &id)

	require.Len(t, controls, 4)
	last := controls[3]
	assert.Equal(t, "Vendedor", last.Label)
	assert.True(t, last.Disabled)
	assert.Equal(t, "Ana", last.Value)
	assert.False(t, controls[0].Disabled)
}

func TestRender_SelectWithoutOptions(t *testing.T) {
	fields := []models.Field{{ID: 9, Label: "Zona", Type: models.FieldSelect, Required: true}}

	controls := Render(fields, BuildEditableState(fields), nil)

	require.Len(t, controls, 1)
	assert.Empty(t, controls[0].Choices)
	assert.Empty(t, MissingRequired(fields, map[string]string{}))
}

func TestMissingRequired(t *testing.T) {
	fields := sampleFields()

	missing := MissingRequired(fields, map[string]string{"Nombre": "Ana"})

	assert.Equal(t, []string{"Personas"}, missing)
}

func TestRestrict_DropsUnknownAndInternalAnswers(t *testing.T) {
	fields := sampleFields()
	in := map[string]string{"Nombre": "Ana", "Vendedor": "Luis", "Extra": "x"}

	out := Restrict(fields, in, nil)

	assert.Equal(t, Answers{"Nombre": "Ana", "Personas": "", "Mesa": ""}, out)

	id := int64(4)
	withPrefill := Restrict(fields, in, &id)
	assert.Equal(t, "Luis", withPrefill["Vendedor"])
}

func TestToSubmission_Copies(t *testing.T) {
	answers := Answers{"Nombre": "Ana"}

	sub := ToSubmission(answers)
	answers["Nombre"] = "changed"

	assert.Equal(t, "Ana", sub["Nombre"])
}
