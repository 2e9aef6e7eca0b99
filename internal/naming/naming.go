// Package naming implements document base-name normalization and version
// suffix handling for files stored in Google Drive.
//
// Document names follow the convention <base> for the first version and
// <base>-v<N> for subsequent versions, where <base> is a normalized slug
// derived from the user-facing title.
package naming

import (
	"fmt"
	"regexp"
	"strings"
)

// accentReplacer transliterates the Spanish characters that show up in
// document titles. Applied after lowercasing, so uppercase variants are
// covered as well.
var accentReplacer = strings.NewReplacer(
	"á", "a",
	"é", "e",
	"í", "i",
	"ó", "o",
	"ú", "u",
	"ñ", "n",
	"ü", "u",
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidChars  = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRun     = regexp.MustCompile(`-+`)
)

// NormalizeTitle converts a free-form document title into a canonical base
// name: lowercase, accents transliterated, whitespace runs collapsed into
// single hyphens, all other characters outside [a-z0-9-] removed, hyphen runs
// collapsed, and leading/trailing hyphens trimmed.
//
// The function is idempotent: NormalizeTitle(NormalizeTitle(s)) ==
// NormalizeTitle(s). An empty or all-invalid title yields "".
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = accentReplacer.Replace(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = invalidChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseVersion reports which version of baseName the given document name
// represents. The bare base name counts as version 1. A name of the form
// <baseName>-v<digits> with nothing after the digits counts as that version.
// Any other name, including ones that merely contain baseName as a substring
// (e.g. "contrato-alquiler-old" for base "contrato-alquiler"), does not
// represent a version and returns ok=false.
func ParseVersion(name, baseName string) (version int, ok bool) {
	if baseName == "" {
		return 0, false
	}
	if name == baseName {
		return 1, true
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(baseName) + `-v(\d+)$`)
	m := re.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, false
		}
	}
	if n < 1 {
		return 0, false
	}
	return n, true
}

// VersionedName renders the document name for a given version of baseName.
// Version 1 is the bare base name; later versions append the -v<N> suffix.
func VersionedName(baseName string, version int) string {
	if version <= 1 {
		return baseName
	}
	return fmt.Sprintf("%s-v%d", baseName, version)
}

// NextName returns the name for the next version given the names already
// present in the user's folder. Names that do not parse as versions of
// baseName are ignored. With no existing versions the bare base name is
// returned; otherwise the highest found version plus one is rendered.
func NextName(baseName string, existing []string) string {
	max := 0
	for _, name := range existing {
		if v, ok := ParseVersion(name, baseName); ok && v > max {
			max = v
		}
	}
	if max == 0 {
		return baseName
	}
	return VersionedName(baseName, max+1)
}
