// Package sanitize provides sanitization helpers for user-generated content.
// All functions are pure string transforms used to prevent XSS, directory
// traversal and related injection attacks before content is stored or shown.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Tags that are safe to keep in rich content.
var allowedTags = map[string]bool{
	"p": true, "br": true, "strong": true, "em": true, "u": true,
	"ul": true, "ol": true, "li": true,
	"a": true, "code": true, "pre": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"span": true, "div": true,
}

// Allowed attributes per tag.
var allowedAttrs = map[string]map[string]bool{
	"a":    {"href": true, "title": true, "target": true},
	"span": {"class": true},
	"div":  {"class": true},
}

// Tags whose entire content is dropped, not just the tag itself.
var droppedContentTags = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "embed": true,
}

// URL schemes allowed on links.
var allowedSchemes = []string{"http:", "https:", "mailto:"}

// Schemes that must never survive sanitization.
var dangerousSchemes = []string{"javascript:", "data:", "vbscript:", "file:", "about:"}

var (
	usernameRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	filenameRegex = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// Text removes all markup from text. Script and style contents are dropped
// entirely. Use for usernames, titles and short fields where no HTML is
// allowed.
func Text(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(stripTags(text))
}

// HTML filters rich content down to an allow-list of safe tags and
// attributes. Use for posts and descriptions where formatting is wanted.
func HTML(text string) string {
	if text == "" {
		return ""
	}

	z := xhtml.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			// io.EOF or malformed input: return what was accepted so far
			return b.String()

		case xhtml.TextToken:
			if skip == 0 {
				b.WriteString(html.EscapeString(string(z.Text())))
			}

		case xhtml.StartTagToken:
			t := z.Token()
			if droppedContentTags[t.Data] {
				skip++
				continue
			}
			if skip > 0 || !allowedTags[t.Data] {
				continue
			}
			writeTag(&b, t, false)

		case xhtml.SelfClosingTagToken:
			t := z.Token()
			if skip > 0 || !allowedTags[t.Data] {
				continue
			}
			writeTag(&b, t, true)

		case xhtml.EndTagToken:
			t := z.Token()
			if droppedContentTags[t.Data] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip > 0 || !allowedTags[t.Data] {
				continue
			}
			b.WriteString("</")
			b.WriteString(t.Data)
			b.WriteString(">")
		}
	}
}

// URL validates and sanitizes a URL, rejecting javascript:, data: and
// similar scheme attacks. Returns "" for dangerous URLs.
func URL(url string) string {
	if url == "" {
		return ""
	}

	url = strings.TrimSpace(url)
	lower := strings.ToLower(url)
	for _, scheme := range dangerousSchemes {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	return Text(url)
}

// Filename sanitizes a filename to prevent directory traversal. Path
// separators are removed and anything outside [A-Za-z0-9._-] becomes "_".
func Filename(filename string) string {
	if filename == "" {
		return ""
	}

	filename = strings.ReplaceAll(filename, "/", "")
	filename = strings.ReplaceAll(filename, "\\", "")
	filename = filenameRegex.ReplaceAllString(filename, "_")

	if len(filename) > 255 {
		filename = filename[:255]
	}

	return filename
}

// Username sanitizes a username: lowercase alphanumeric plus underscore,
// capped at 30 characters.
func Username(username string) string {
	if username == "" {
		return ""
	}

	username = usernameRegex.ReplaceAllString(username, "")
	username = strings.ToLower(username)

	if len(username) > 30 {
		username = username[:30]
	}

	return username
}

// SearchQuery sanitizes a search query: markup stripped, capped at 100
// characters.
func SearchQuery(query string) string {
	if query == "" {
		return ""
	}

	query = stripTags(query)
	if len(query) > 100 {
		query = query[:100]
	}

	return strings.TrimSpace(query)
}

// Escape HTML-escapes text for safe display of user input as-is.
func Escape(text string) string {
	if text == "" {
		return ""
	}
	return html.EscapeString(text)
}

// stripTags removes all tags, dropping script/style contents entirely.
// Remaining text is entity-escaped.
func stripTags(text string) string {
	z := xhtml.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return b.String()
		case xhtml.TextToken:
			if skip == 0 {
				b.WriteString(html.EscapeString(string(z.Text())))
			}
		case xhtml.StartTagToken:
			name, _ := z.TagName()
			if droppedContentTags[string(name)] {
				skip++
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if droppedContentTags[string(name)] && skip > 0 {
				skip--
			}
		}
	}
}

// writeTag renders a tag keeping only its allowed attributes.
func writeTag(b *strings.Builder, t xhtml.Token, selfClosing bool) {
	b.WriteString("<")
	b.WriteString(t.Data)

	allowed := allowedAttrs[t.Data]
	for _, attr := range t.Attr {
		if allowed == nil || !allowed[attr.Key] {
			continue
		}
		val := attr.Val
		if attr.Key == "href" && !safeLink(val) {
			continue
		}
		b.WriteString(" ")
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(val))
		b.WriteString(`"`)
	}

	if selfClosing {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
}

// safeLink reports whether an href uses an allowed protocol. Scheme-less
// (relative) links are allowed.
func safeLink(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, scheme := range dangerousSchemes {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	if !strings.Contains(lower, ":") {
		return true
	}
	for _, scheme := range allowedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}
