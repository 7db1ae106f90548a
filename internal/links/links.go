// Package links builds and parses the shareable reservation and invite URLs.
package links

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"go.uber.org/zap"
)

const (
	ParamRef        = "ref"
	ParamFieldID    = "field_id"
	ParamValue      = "val"
	ParamFieldValue = "field_value" // legacy, unencoded
)

var ErrInvalidEncoding = errors.New("prefill value is not valid base64 UTF-8")

// ReservationURL is the public form link, attributed to ref when non-empty.
func ReservationURL(base, eventID, ref string) string {
	u := base + "/reservation/" + url.PathEscape(eventID)
	if ref != "" {
		u += "?" + url.Values{ParamRef: {ref}}.Encode()
	}
	return u
}

// PrefilledURL is a reservation link that also carries an answer for fieldID.
// The value is only obscured by base64, never protected.
func PrefilledURL(base, eventID, ref string, fieldID int64, value string) string {
	q := url.Values{}
	if ref != "" {
		q.Set(ParamRef, ref)
	}
	q.Set(ParamFieldID, strconv.FormatInt(fieldID, 10))
	q.Set(ParamValue, EncodeValue(value))
	return base + "/reservation/" + url.PathEscape(eventID) + "?" + q.Encode()
}

// InviteURL is the link a promoter follows to join an event team.
func InviteURL(base, eventID string) string {
	return base + "/join/" + url.PathEscape(eventID)
}

func EncodeValue(value string) string {
	return base64.StdEncoding.EncodeToString([]byte(value))
}

func DecodeValue(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidEncoding
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidEncoding
	}
	return string(raw), nil
}

// Prefill is what a reservation link carries besides the event id.
type Prefill struct {
	Ref     string
	FieldID *int64
	Value   string
}

// HasValue reports whether the link targets a field with a non-empty answer.
func (p Prefill) HasValue() bool {
	return p.FieldID != nil && p.Value != ""
}

// DecodePrefill reads the reservation query parameters. A value that fails to
// decode is dropped with a warning so the form still loads.
func DecodePrefill(q url.Values) Prefill {
	p := Prefill{Ref: q.Get(ParamRef)}

	if raw := q.Get(ParamFieldID); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			p.FieldID = &id
		}
	}

	p.Value = q.Get(ParamFieldValue)
	if encoded := q.Get(ParamValue); encoded != "" {
		v, err := DecodeValue(encoded)
		if err != nil {
			logger.Log.Warn("failed to decode prefill value", zap.String("val", encoded), zap.Error(err))
		} else {
			p.Value = v
		}
	}
	return p
}
