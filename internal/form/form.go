// Package form turns an event's field list into public form state and back.
package form

import "github.com/q6kkhvmy6s/rsvp/internal/models"

// Answers maps a field label to the attendee's answer.
type Answers map[string]string

// Control is one rendered input of the public form.
type Control struct {
	FieldID  int64    `json:"fieldId"`
	Label    string   `json:"label"`
	Input    string   `json:"input"`
	Required bool     `json:"required"`
	Disabled bool     `json:"disabled"`
	Value    string   `json:"value"`
	Choices  []string `json:"choices,omitempty"`
}

// BuildEditableState seeds one empty answer per public field.
func BuildEditableState(fields []models.Field) Answers {
	answers := make(Answers, len(fields))
	for _, f := range fields {
		if !f.IsInternal {
			answers[f.Label] = ""
		}
	}
	return answers
}

// ApplyPrefill writes value under the label of the field with id fieldID.
// Internal fields are accepted: a prefilled link is how they get answered.
// It reports whether a field was targeted.
func ApplyPrefill(fields []models.Field, answers Answers, fieldID int64, value string) bool {
	f, ok := models.FindField(fields, fieldID)
	if !ok || value == "" {
		return false
	}
	answers[f.Label] = value
	return true
}

// ToSubmission returns the answers as stored on the reservation.
func ToSubmission(answers Answers) map[string]string {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}

// Render builds the ordered controls of the public form. prefilled is the id
// of the field targeted by a prefilled link, or nil; that field is shown
// disabled with its value even when it is internal.
func Render(fields []models.Field, answers Answers, prefilled *int64) []Control {
	controls := make([]Control, 0, len(fields))
	for _, f := range fields {
		targeted := prefilled != nil && *prefilled == f.ID
		if f.IsInternal && !targeted {
			continue
		}
		c := renderControl(f)
		c.Value = answers[f.Label]
		c.Disabled = targeted
		controls = append(controls, c)
	}
	return controls
}

func renderControl(f models.Field) Control {
	c := Control{FieldID: f.ID, Label: f.Label, Required: f.Required}
	switch f.Type {
	case models.FieldSelect:
		c.Input = "select"
		c.Choices = make([]string, len(f.Options))
		copy(c.Choices, f.Options)
	case models.FieldNumber, models.FieldDate, models.FieldText:
		c.Input = f.Type.InputKind()
	default:
		c.Input = models.FieldText.InputKind()
	}
	return c
}

// MissingRequired lists the labels of required public fields left blank.
func MissingRequired(fields []models.Field, answers map[string]string) []string {
	var missing []string
	for _, f := range fields {
		if f.IsInternal || !f.Required {
			continue
		}
		if f.Type == models.FieldSelect && !hasChoice(f.Options) {
			continue
		}
		if answers[f.Label] == "" {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

func hasChoice(options []string) bool {
	for _, o := range options {
		if o != "" {
			return true
		}
	}
	return false
}

// Restrict keeps only answers whose label belongs to a public field or to
// the prefilled field.
func Restrict(fields []models.Field, answers map[string]string, prefilled *int64) Answers {
	out := BuildEditableState(fields)
	for _, f := range fields {
		allowed := !f.IsInternal || (prefilled != nil && *prefilled == f.ID)
		if !allowed {
			continue
		}
		if v, ok := answers[f.Label]; ok {
			out[f.Label] = v
		}
	}
	return out
}
