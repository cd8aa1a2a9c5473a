package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

var (
    reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
    reHyphen   = regexp.MustCompile(`-+`)
)

const maxSlugLen = 100

// Slugify turns free text into a [a-z0-9-] slug: diacritics stripped,
// hyphen runs compressed, ends trimmed, "event" as the empty fallback.
func Slugify(s string) string {
    s = strings.ToLower(strings.TrimSpace(s))

    // Strip diacritics (é -> e)
    var buf []rune
    for _, r := range norm.NFD.String(s) {
        if unicode.Is(unicode.Mn, r) {
            continue
        }
        buf = append(buf, r)
    }
    s = string(buf)

    s = reNonAlnum.ReplaceAllString(s, "-")
    s = reHyphen.ReplaceAllString(s, "-")
    s = strings.Trim(s, "-")

    if s == "" {
        return "event"
    }
    if len(s) > maxSlugLen {
        s = strings.Trim(s[:maxSlugLen], "-")
    }
    return s
}

// EnsureUniqueSlug probes slug, slug-2, slug-3, ... against a table column
// until a free value is found.
func EnsureUniqueSlug(db *gorm.DB, table, column, base string) (string, error) {
    slug := base
    for i := 0; i < 25; i++ {
        var count int64
        if err := db.Table(table).Where(fmt.Sprintf("%s = ?", column), slug).Count(&count).Error; err != nil {
            return "", err
        }
        if count == 0 {
            return slug, nil
        }
        slug = fmt.Sprintf("%s-%d", base, i+2)
    }
    return "", fmt.Errorf("could not find a unique slug for %q", base)
}
