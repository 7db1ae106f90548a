package links

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://reservas.example.com"

func TestReservationURL(t *testing.T) {
	assert.Equal(t, base+"/reservation/ev1", ReservationURL(base, "ev1", ""))
	assert.Equal(t, base+"/reservation/ev1?ref=uid-7", ReservationURL(base, "ev1", "uid-7"))
}

func TestInviteURL(t *testing.T) {
	assert.Equal(t, base+"/join/ev1", InviteURL(base, "ev1"))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, s := range []string{"Café 5", "plain ascii", "日本語のテキスト", "emoji 🎉 + / ="} {
		got, err := DecodeValue(EncodeValue(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestPrefilledURL_DecodesBack(t *testing.T) {
	link := PrefilledURL(base, "ev1", "uid-7", 1700000000000, "Café 5")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/reservation/ev1", u.Path)

	p := DecodePrefill(u.Query())
	assert.Equal(t, "uid-7", p.Ref)
	require.NotNil(t, p.FieldID)
	assert.Equal(t, int64(1700000000000), *p.FieldID)
	assert.Equal(t, "Café 5", p.Value)
	assert.True(t, p.HasValue())
}

func TestDecodePrefill_MalformedValueFailsOpen(t *testing.T) {
	q := url.Values{"field_id": {"4"}, "val": {"%%%not-base64"}}

	p := DecodePrefill(q)

	require.NotNil(t, p.FieldID)
	assert.Equal(t, "", p.Value)
	assert.False(t, p.HasValue())
}

func TestDecodePrefill_InvalidUTF8Ignored(t *testing.T) {
	q := url.Values{"field_id": {"4"}, "val": {"/w=="}}

	p := DecodePrefill(q)

	assert.Equal(t, "", p.Value)
}

func TestDecodePrefill_LegacyFieldValue(t *testing.T) {
	q := url.Values{"field_id": {"4"}, "field_value": {"Mesa 3"}}

	p := DecodePrefill(q)

	assert.Equal(t, "Mesa 3", p.Value)
	assert.Equal(t, "", p.Ref)
}

func TestDecodePrefill_EncodedWinsOverLegacy(t *testing.T) {
	q := url.Values{"field_id": {"4"}, "field_value": {"old"}, "val": {EncodeValue("new")}}

	assert.Equal(t, "new", DecodePrefill(q).Value)
}

func TestDecodePrefill_NonNumericFieldID(t *testing.T) {
	p := DecodePrefill(url.Values{"field_id": {"abc"}, "val": {EncodeValue("x")}})

	assert.Nil(t, p.FieldID)
	assert.False(t, p.HasValue())
}
