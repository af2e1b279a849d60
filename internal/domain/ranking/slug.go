package ranking

import (
	"net/url"
	"regexp"
	"strings"
)

// TitleFromSlug turns a URL slug back into a title for lookup: it decodes
// URL escapes and replaces every "-" with a space. The transform is lossy.
// Titles that contain a literal hyphen or punctuation never match, and
// titles that differ only in case collide.
func TitleFromSlug(slug string) string {
	decoded, err := url.PathUnescape(slug)
	if err != nil {
		decoded = slug
	}
	return strings.ReplaceAll(decoded, "-", " ")
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug builds the link form of a title the way clients do: lowercase, with
// every run of other characters collapsed to "-".
func Slug(title string) string {
	return nonSlug.ReplaceAllString(strings.ToLower(title), "-")
}
