package views

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/models"
)

var funcs = template.FuncMap{
	"markdown":     renderMarkdown,
	"link":         Link,
	"date":         FormatDate,
	"jsonld":       func(s string) template.JS { return template.JS(s) },
	"pathEscape":   PathEscape,
	"tagClass":     TagClass,
	"settingLabel": SettingLabel,
	"isLongText":   isLongText,
	"split":        models.SplitList,
	"join":         strings.Join,
}

func renderMarkdown(s string) template.HTML {
	out, err := markdown.ToHTML(s)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(out)
}

// Link returns raw as a trusted URL when it is safe to place in an href,
// and "" otherwise.
func Link(raw string) template.URL {
	if markdown.SafeURL(raw) == "" {
		return ""
	}
	return template.URL(strings.TrimSpace(raw))
}

// FormatDate renders a timestamp the way the site displays dates.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

var settingLabels = map[string]string{
	models.SettingSiteTitle:       "Site title",
	models.SettingSiteTagline:     "Tagline",
	models.SettingSiteDescription: "Intro",
	models.SettingContactEmail:    "Contact email",
	models.SettingSocialLinkedIn:  "LinkedIn URL",
	models.SettingSocialGithub:    "GitHub URL",
	models.SettingSocialTwitter:   "Twitter URL",
	models.SettingSocialDribbble:  "Dribbble URL",
	models.SettingAboutText:       "About text (markdown)",
	models.SettingAboutImage:      "About image",
	models.SettingSkills:          "Skills (comma separated)",
}

// SettingLabel returns the form label for a setting key.
func SettingLabel(key string) string {
	if l, ok := settingLabels[key]; ok {
		return l
	}
	return key
}

func isLongText(key string) bool {
	return key == models.SettingAboutText || key == models.SettingSiteDescription
}
