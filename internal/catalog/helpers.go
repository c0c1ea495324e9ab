package catalog

import (
	"regexp"
	"strings"
)

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[\s-]+`)
)

// GenerateSlug converts a service name to a URL-friendly slug. Called
// explicitly at create/rename time; there is no persistence-layer hook.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
