package repository

import (
	"testing"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPatchColumns_OnlySetMembers(t *testing.T) {
	title := "New"
	accepting := false
	var noPrimary *int64

	cols := patchColumns(models.EventPatch{
		Title:                 &title,
		AcceptingReservations: &accepting,
		PrimaryField:          &noPrimary,
	})

	assert.ElementsMatch(t, []string{"updated_at", "title", "accepting_reservations", "primary_field"}, cols)
}

func TestPatchDocument_KeepsExplicitZeroValues(t *testing.T) {
	accepting := false
	empty := ""
	var noPrimary *int64

	doc := patchDocument(models.EventPatch{
		AcceptingReservations: &accepting,
		Note:                  &empty,
		PrimaryField:          &noPrimary,
	})

	assert.Equal(t, bson.M{
		"accepting_reservations": false,
		"note":                   "",
		"primary_field":          noPrimary,
	}, doc)
}

func TestPatchDocument_Empty(t *testing.T) {
	assert.Empty(t, patchDocument(models.EventPatch{}))
}

func TestContainsJSON(t *testing.T) {
	assert.Equal(t, `["uid-1"]`, containsJSON("uid-1"))
	assert.Equal(t, `["a\"b"]`, containsJSON(`a"b`))
}
