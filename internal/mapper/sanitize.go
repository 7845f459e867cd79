package mapper

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// maxStripPasses bounds decoding of nested entity encodings.
const maxStripPasses = 4

// angleBrackets removes brackets left behind once stripping has settled.
var angleBrackets = strings.NewReplacer("<", "", ">", "")

// SanitizeText renders a JSON scalar as plain single-line text: markup and
// script/style bodies are stripped, invalid UTF-8 dropped and whitespace
// runs collapsed. Objects, lists and null become "".
//
// Entities are decoded and the result stripped again until it is stable, so
// "&lt;b&gt;" and "<b>" sanitize the same way. The output never contains
// angle brackets.
func SanitizeText(value any) string {
	s := scalarString(value)
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	for i := 0; i < maxStripPasses && strings.ContainsAny(s, "<&"); i++ {
		stripped := stripTags(s)
		if stripped == s {
			break
		}
		s = stripped
	}
	s = angleBrackets.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeEmail returns the address if it is a valid email, "" otherwise.
func SanitizeEmail(value any) string {
	email := strings.ReplaceAll(SanitizeText(value), " ", "")
	if email == "" {
		return ""
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return ""
	}
	return email
}

// SanitizeURL returns an absolute http(s) URL, or "" when the value is not one.
func SanitizeURL(value any) string {
	raw, ok := value.(string)
	if !ok {
		return ""
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\r\n<>\"") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String()
	}
	return ""
}

func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "1"
		}
		return ""
	}
	return ""
}

func stripTags(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	return doc.Text()
}
