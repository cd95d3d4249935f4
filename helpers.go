package folio

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/eringen/folio/markdown"
	"github.com/eringen/folio/models"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// absURL resolves a site-relative path such as an upload against base.
func absURL(base, p string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

// FilterRelatedPosts returns posts that share at least one tag with current.
func FilterRelatedPosts(current models.Post, posts []models.Post) []models.Post {
	tagSet := make(map[string]struct{})
	for _, t := range current.TagList() {
		tagSet[strings.ToLower(t)] = struct{}{}
	}
	var related []models.Post
	for _, p := range posts {
		if p.ID == current.ID {
			continue
		}
		for _, t := range p.TagList() {
			if _, ok := tagSet[strings.ToLower(t)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// parseID reads a positive integer id from a path parameter.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

func marshalJSONLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func person(name string) map[string]string {
	return map[string]string{"@type": "Person", "name": name}
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site Site) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      BuildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = person(site.Author)
	}
	return marshalJSONLD(data)
}

// ProfileJsonLD describes the site owner for the about page.
func ProfileJsonLD(site Site, settings map[string]string) string {
	name := site.Author
	if name == "" {
		name = settings[models.SettingSiteTitle]
	}
	data := map[string]any{
		"@context":   "https://schema.org",
		"@type":      "ProfilePage",
		"url":        BuildURL(site.URL, "about"),
		"mainEntity": person(name),
	}
	var sameAs []string
	for _, key := range []string{models.SettingSocialLinkedIn, models.SettingSocialGithub, models.SettingSocialTwitter, models.SettingSocialDribbble} {
		if u := markdown.SafeURL(settings[key]); u != "" && !strings.HasPrefix(u, "/") {
			sameAs = append(sameAs, settings[key])
		}
	}
	if len(sameAs) > 0 {
		data["mainEntity"] = map[string]any{"@type": "Person", "name": name, "sameAs": sameAs}
	}
	return marshalJSONLD(data)
}

// CreativeWorkJsonLD returns a JSON-LD string describing a project.
func CreativeWorkJsonLD(p models.Project, site Site) string {
	data := map[string]any{
		"@context":     "https://schema.org",
		"@type":        "CreativeWork",
		"name":         p.Title,
		"description":  p.Description,
		"genre":        p.Category,
		"url":          BuildURL(site.URL, "project", p.Slug),
		"dateCreated":  p.CreatedAt.Format("2006-01-02"),
		"dateModified": p.UpdatedAt.Format("2006-01-02"),
	}
	if p.Thumbnail != "" {
		data["image"] = absURL(site.URL, p.Thumbnail)
	}
	if site.Author != "" {
		data["creator"] = person(site.Author)
	}
	return marshalJSONLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(p models.Post, site Site) string {
	postURL := BuildURL(site.URL, "blog", p.Slug)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      p.Title,
		"description":   p.Excerpt,
		"datePublished": p.CreatedAt.Format("2006-01-02"),
		"dateModified":  p.UpdatedAt.Format("2006-01-02"),
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if site.Author != "" {
		data["author"] = person(site.Author)
	}
	if site.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		}
	}
	if tags := p.TagList(); len(tags) > 0 {
		data["keywords"] = strings.Join(tags, ", ")
	}
	if p.Thumbnail != "" {
		data["image"] = absURL(site.URL, p.Thumbnail)
	}
	return marshalJSONLD(data)
}
