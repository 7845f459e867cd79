package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

const sejmBaseURL = "https://api.sejm.gov.pl/sejm/term10/MP"

func TestMap_BasicRecord(t *testing.T) {
	record := map[string]any{
		"id":           json.Number("7"),
		"firstName":    "Jan",
		"lastName":     "Kowalski",
		"club":         "X",
		"districtName": "Warszawa",
	}

	got := New(sejmBaseURL).Map(record)

	assert.Equal(t, "7", got.ExternalID)
	assert.Equal(t, "Jan Kowalski", got.Title)
	assert.Equal(t, "Jan Kowalski", got.Fields.FullName)
	assert.Contains(t, got.Excerpt, "X")
	assert.Contains(t, got.Excerpt, "Warszawa")
	assert.Equal(t, "Member of Parliament representing Warszawa (X)", got.Excerpt)
	assert.False(t, got.HasExtra())
	assert.Empty(t, got.Fields.ExtraJSON)
	assert.Empty(t, got.Content)
	assert.Empty(t, got.Fields.Contacts)
	assert.NotNil(t, got.Fields.Contacts)
}

func TestMap_IsDeterministic(t *testing.T) {
	record := map[string]any{
		"id":             json.Number("12"),
		"firstName":      "Anna",
		"lastName":       "Nowak",
		"email":          "anna.nowak@sejm.pl",
		"profession":     "lawyer",
		"educationLevel": "higher",
		"photo":          "https://example.com/anna.jpg",
		"zeta":           "z",
		"alpha":          []any{"a", json.Number("1")},
	}

	m := New(sejmBaseURL)
	assert.Equal(t, m.Map(record), m.Map(record))
}

func TestMap_ExtraFieldsBag(t *testing.T) {
	record := map[string]any{
		"id":         json.Number("1"),
		"firstName":  "Jan",
		"lastName":   "Kowalski",
		"weirdField": "x",
	}

	got := New(sejmBaseURL).Map(record)
	require.True(t, got.HasExtra())

	var extra map[string]any
	require.NoError(t, json.Unmarshal([]byte(got.Fields.ExtraJSON), &extra))
	assert.Equal(t, map[string]any{"weirdField": "x"}, extra)
}

func TestMap_ExtraFieldsKeepUnicodeAndMarkup(t *testing.T) {
	record := map[string]any{
		"id":     json.Number("1"),
		"notes":  "Łódź <b>",
		"active": true,
	}

	got := New(sejmBaseURL).Map(record)
	assert.Equal(t, "{\n    \"notes\": \"Łódź <b>\"\n}", got.Fields.ExtraJSON)
}

func TestMap_FullNamePrefersCombinedField(t *testing.T) {
	record := map[string]any{
		"id":            json.Number("1"),
		"firstName":     "Jan",
		"lastName":      "Kowalski",
		"firstLastName": "Jan Maria Kowalski",
	}

	got := New(sejmBaseURL).Map(record)
	assert.Equal(t, "Jan Maria Kowalski", got.Fields.FullName)
	assert.Equal(t, "Jan", got.Fields.FirstName)
}

func TestMap_MissingNamesFallBackToID(t *testing.T) {
	got := New(sejmBaseURL).Map(map[string]any{"id": json.Number("9")})
	assert.Equal(t, "MP 9", got.Title)
	assert.Empty(t, got.Fields.FullName)
}

func TestMap_DerivedPhotoURLs(t *testing.T) {
	record := map[string]any{"id": json.Number("42")}

	got := New("https://api.sejm.gov.pl/sejm/TERM9/MP").Map(record)
	assert.Equal(t, "9", got.Fields.Term)
	assert.Equal(t, "https://api.sejm.gov.pl/sejm/term9/MP/42/photo", got.Fields.SejmPhotoURL)
	assert.Equal(t, "https://api.sejm.gov.pl/sejm/term9/MP/42/photo-mini", got.Fields.SejmPhotoMiniURL)

	noTerm := New("https://example.com/api/mps").Map(record)
	assert.Empty(t, noTerm.Fields.Term)
	assert.Empty(t, noTerm.Fields.SejmPhotoURL)
	assert.Empty(t, noTerm.Fields.SejmPhotoMiniURL)

	nonNumeric := New(sejmBaseURL).Map(map[string]any{"id": "abc"})
	assert.Equal(t, "10", nonNumeric.Fields.Term)
	assert.Empty(t, nonNumeric.Fields.SejmPhotoURL)
}

func TestMap_Content(t *testing.T) {
	m := New(sejmBaseURL)

	both := m.Map(map[string]any{"id": "1", "profession": "Engineer & builder", "educationLevel": "higher"})
	assert.Equal(t,
		"<p><strong>Profession:</strong> Engineer &amp; builder</p>\n<p><strong>Education:</strong> higher</p>",
		both.Content)

	onlyEducation := m.Map(map[string]any{"id": "1", "educationLevel": "secondary"})
	assert.Equal(t, "<p><strong>Education:</strong> secondary</p>", onlyEducation.Content)
}

func TestMap_EmailContact(t *testing.T) {
	m := New(sejmBaseURL)

	valid := m.Map(map[string]any{"id": "1", "email": " Jan.Kowalski@sejm.pl "})
	require.Len(t, valid.Fields.Contacts, 1)
	assert.Equal(t, entities.Contact{
		Label: "Email",
		Value: "Jan.Kowalski@sejm.pl",
		Type:  entities.ContactTypeEmail,
	}, valid.Fields.Contacts[0])

	invalid := m.Map(map[string]any{"id": "1", "email": "not-an-email"})
	assert.Empty(t, invalid.Fields.Contacts)
}

func TestMap_SanitizesText(t *testing.T) {
	got := New(sejmBaseURL).Map(map[string]any{
		"id":           "1",
		"firstName":    "  <b>Jan</b>\n",
		"lastName":     "Kowalski<script>alert(1)</script>",
		"club":         json.Number("5"),
		"districtName": map[string]any{"nested": true},
		"photo":        "javascript:alert(1)",
	})

	assert.Equal(t, "Jan", got.Fields.FirstName)
	assert.Equal(t, "Kowalski", got.Fields.LastName)
	assert.Equal(t, "5", got.Fields.Party)
	assert.Empty(t, got.Fields.Constituency)
	assert.Empty(t, got.Fields.PhotoURL)
}

func TestMap_SanitizesEntityEncodedMarkup(t *testing.T) {
	got := New(sejmBaseURL).Map(map[string]any{
		"id":           "7",
		"firstName":    "<b>Jan</b> &lt;script&gt;alert(1)&lt;/script&gt;",
		"lastName":     "&lt;img src=x onerror=alert(1)&gt;Kowalski",
		"club":         "<i>X</i> &lt;script&gt;",
		"districtName": "Warszawa &amp;lt;b&amp;gt;",
	})

	assert.Equal(t, "Jan", got.Fields.FirstName)
	assert.Equal(t, "Kowalski", got.Fields.LastName)
	assert.Equal(t, "X", got.Fields.Party)
	assert.Equal(t, "Warszawa", got.Fields.Constituency)
	assert.Equal(t, "Member of Parliament representing Warszawa (X)", got.Excerpt)
	for _, text := range []string{got.Title, got.Excerpt, got.Fields.FullName} {
		assert.NotContains(t, text, "<")
		assert.NotContains(t, text, ">")
	}
}

func TestSanitizeText_SameWithOrWithoutLiteralTags(t *testing.T) {
	assert.Equal(t, SanitizeText("<b>Jan</b>"), SanitizeText("&lt;b&gt;Jan&lt;/b&gt;"))
	assert.Equal(t, "Tom & Jerry", SanitizeText("Tom &amp; Jerry"))
	assert.Equal(t, "Tom & Jerry", SanitizeText("Tom & Jerry"))
	assert.Equal(t, "3 5", SanitizeText("3 < 5"))
}

func TestExternalID(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   string
		ok     bool
	}{
		{"number", map[string]any{"id": json.Number("7")}, "7", true},
		{"string", map[string]any{"id": " 7 "}, "7", true},
		{"float", map[string]any{"id": float64(15)}, "15", true},
		{"missing", map[string]any{"firstName": "Jan"}, "", false},
		{"null", map[string]any{"id": nil}, "", false},
		{"empty string", map[string]any{"id": ""}, "", false},
		{"zero", map[string]any{"id": json.Number("0")}, "", false},
		{"zero string", map[string]any{"id": "0"}, "", false},
		{"bool", map[string]any{"id": true}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExternalID(tt.record)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a.jpg", SanitizeURL(" https://example.com/a.jpg "))
	assert.Equal(t, "http://example.com/a.jpg", SanitizeURL("http://example.com/a.jpg"))
	assert.Empty(t, SanitizeURL("/relative.jpg"))
	assert.Empty(t, SanitizeURL("ftp://example.com/a.jpg"))
	assert.Empty(t, SanitizeURL("https://exa mple.com"))
	assert.Empty(t, SanitizeURL(42))
}
