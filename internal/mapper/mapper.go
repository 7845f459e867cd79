// Package mapper turns raw upstream MP records into the local MP schema.
//
// Mapping is pure: the same record always yields the same MappedEntity, and
// nothing is read from or written to storage.
package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/mrlokans/mpdirectory/internal/entities"
)

const (
	sejmPhotoURLFormat     = "https://api.sejm.gov.pl/sejm/term%s/MP/%d/photo"
	sejmPhotoMiniURLFormat = "https://api.sejm.gov.pl/sejm/term%s/MP/%d/photo-mini"
	excerptFormat          = "Member of Parliament representing %s (%s)"
)

var termPattern = regexp.MustCompile(`(?i)term(\d+)`)

// knownKeys are upstream fields consumed by the mapper or deliberately ignored.
// Everything else ends up in the extra JSON bag.
var knownKeys = map[string]struct{}{
	"id": {}, "firstName": {}, "lastName": {}, "firstLastName": {},
	"lastFirstName": {}, "secondName": {}, "accusativeName": {},
	"genitiveName": {}, "club": {}, "districtName": {}, "districtNum": {},
	"voivodeship": {}, "birthDate": {}, "birthLocation": {},
	"educationLevel": {}, "profession": {}, "email": {}, "photo": {},
	"numberOfVotes": {}, "active": {},
}

// MappedEntity is the local representation of one upstream record.
type MappedEntity struct {
	ExternalID string
	Title      string
	Content    string
	Excerpt    string
	Fields     entities.MPFields
}

// HasExtra reports whether the record carried unmapped fields.
func (m MappedEntity) HasExtra() bool {
	return m.Fields.ExtraJSON != ""
}

// Mapper maps records for one configured API endpoint.
type Mapper struct {
	term string
}

// New creates a mapper; the parliamentary term is read from a "term<N>"
// segment of the API base URL.
func New(apiBaseURL string) *Mapper {
	m := &Mapper{}
	if match := termPattern.FindStringSubmatch(apiBaseURL); match != nil {
		m.term = strings.TrimLeft(match[1], "0")
		if m.term == "" {
			m.term = "0"
		}
	}
	return m
}

// Term returns the term number found in the base URL, or "".
func (m *Mapper) Term() string {
	return m.term
}

// Map converts a record. It does not validate the id; see ExternalID.
func (m *Mapper) Map(record map[string]any) MappedEntity {
	id, _ := ExternalID(record)

	firstName := SanitizeText(record["firstName"])
	lastName := SanitizeText(record["lastName"])
	fullName := SanitizeText(record["firstLastName"])
	if fullName == "" {
		fullName = strings.TrimSpace(firstName + " " + lastName)
	}

	party := SanitizeText(record["club"])
	constituency := SanitizeText(record["districtName"])
	education := SanitizeText(record["educationLevel"])
	profession := SanitizeText(record["profession"])
	email := SanitizeEmail(record["email"])

	fields := entities.MPFields{
		FirstName:    firstName,
		LastName:     lastName,
		FullName:     fullName,
		Party:        party,
		Constituency: constituency,
		BirthDate:    SanitizeText(record["birthDate"]),
		Education:    education,
		PhotoURL:     SanitizeURL(record["photo"]),
		Contacts:     []entities.Contact{},
		ExtraJSON:    extraJSON(record),
	}

	if m.term != "" {
		fields.Term = m.term
		if numericID, err := strconv.ParseUint(id, 10, 64); err == nil && numericID > 0 {
			fields.SejmPhotoURL = fmt.Sprintf(sejmPhotoURLFormat, m.term, numericID)
			fields.SejmPhotoMiniURL = fmt.Sprintf(sejmPhotoMiniURLFormat, m.term, numericID)
		}
	}

	if email != "" {
		fields.Contacts = append(fields.Contacts, entities.Contact{
			Label: "Email",
			Value: email,
			Type:  entities.ContactTypeEmail,
		})
	}

	title := fullName
	if title == "" && id != "" {
		title = "MP " + id
	}

	return MappedEntity{
		ExternalID: id,
		Title:      title,
		Content:    buildContent(profession, education),
		Excerpt:    fmt.Sprintf(excerptFormat, constituency, party),
		Fields:     fields,
	}
}

// ExternalID extracts the upstream id as text. Missing, null, false, empty
// and zero ids are reported as absent.
func ExternalID(record map[string]any) (string, bool) {
	raw, ok := record["id"]
	if !ok || raw == nil {
		return "", false
	}
	if _, isBool := raw.(bool); isBool {
		return "", false
	}
	id := SanitizeText(raw)
	if id == "" {
		return "", false
	}
	if f, err := strconv.ParseFloat(id, 64); err == nil && f == 0 {
		return "", false
	}
	return id, true
}

func buildContent(profession, education string) string {
	var parts []string
	if profession != "" {
		parts = append(parts, "<p><strong>Profession:</strong> "+html.EscapeString(profession)+"</p>")
	}
	if education != "" {
		parts = append(parts, "<p><strong>Education:</strong> "+html.EscapeString(education)+"</p>")
	}
	return strings.Join(parts, "\n")
}

// extraJSON serializes every unknown key as indented JSON with markup and
// non-ASCII text left unescaped. Returns "" when there is nothing left over.
func extraJSON(record map[string]any) string {
	extra := make(map[string]any)
	for key, value := range record {
		if _, known := knownKeys[key]; !known {
			extra[key] = value
		}
	}
	if len(extra) == 0 {
		return ""
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(extra); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
