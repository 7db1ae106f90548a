// Package export orders reservation lists and serializes them to CSV.
package export

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/q6kkhvmy6s/rsvp/internal/auth"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Synthetic sort keys that are not field labels.
const (
	KeyPromoter  = "promoterId"
	KeyCreatedAt = "createdAt"
)

// ParseDirection defaults to descending for anything but "asc".
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Asc)) {
		return Asc
	}
	return Desc
}

// VisibleTo filters the list down to what the session may see: admins get
// everything, promoters only the rows attributed to them.
func VisibleTo(s *auth.Session, rs []models.Reservation) []models.Reservation {
	if s.IsAdmin() {
		return rs
	}
	uid := s.UID()
	out := make([]models.Reservation, 0, len(rs))
	if uid == "" {
		return out
	}
	for _, r := range rs {
		if r.Promoter() == uid {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders a copy of rs by key. A key naming a field label compares the
// answers by that field's type; promoterId compares the resolved promoter
// names; createdAt compares timestamps. Any other key leaves the order as is.
// Ties keep their input order.
func Sort(fields []models.Field, rs []models.Reservation, key string, dir Direction, names map[string]string) []models.Reservation {
	out := slices.Clone(rs)
	compare := comparator(fields, key, names)
	if compare == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b models.Reservation) int {
		c := compare(&a, &b)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

func comparator(fields []models.Field, key string, names map[string]string) func(a, b *models.Reservation) int {
	if f, ok := models.FindFieldByLabel(fields, key); ok {
		return func(a, b *models.Reservation) int {
			return compareAnswers(f.Type, a.FormData[f.Label], b.FormData[f.Label])
		}
	}
	switch key {
	case KeyPromoter:
		return func(a, b *models.Reservation) int {
			return cmp.Compare(names[a.Promoter()], names[b.Promoter()])
		}
	case KeyCreatedAt:
		return func(a, b *models.Reservation) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	return nil
}

func compareAnswers(t models.FieldType, a, b string) int {
	switch t {
	case models.FieldNumber:
		fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
		fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
		if errA == nil && errB == nil {
			return cmp.Compare(fa, fb)
		}
		return cmp.Compare(a, b)
	case models.FieldDate, models.FieldText, models.FieldSelect:
		return cmp.Compare(a, b)
	}
	return cmp.Compare(a, b)
}
