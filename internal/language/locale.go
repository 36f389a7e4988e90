package language

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/language"

	"slidevox/internal/services"
)

var localeRun = regexp.MustCompile(`^([a-z]{2,3})(?:-?([A-Z]{2}))?$`)

// Locale is the locale information encoded in a deck file name.
type Locale struct {
	// Code is the raw target run as written in the file name; it names the
	// asset directory.
	Code string
	// Tag is the canonical BCP 47 form of Code.
	Tag string
	// Source is the raw source-language run.
	Source string
	// Name is the leading name portion of the file name.
	Name string
}

// IsLocaleRun reports whether s is shaped like a locale code ("de", "deDE",
// "de-DE").
func IsLocaleRun(s string) bool {
	return localeRun.MatchString(s)
}

// ResolveLocale extracts the target locale from a deck path of the form
// "<name>_<target>_<source>_<suffix>.<ext>".
func ResolveLocale(docPath string) (Locale, error) {
	base := filepath.Base(docPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	segs := strings.Split(stem, "_")
	for i := 1; i+2 < len(segs); i++ {
		if !IsLocaleRun(segs[i]) || !IsLocaleRun(segs[i+1]) {
			continue
		}
		name := strings.Join(segs[:i], "_")
		suffix := strings.Join(segs[i+2:], "_")
		if strings.TrimSpace(name) == "" || strings.TrimSpace(suffix) == "" {
			continue
		}
		return Locale{
			Code:   segs[i],
			Tag:    Canonical(segs[i]),
			Source: segs[i+1],
			Name:   name,
		}, nil
	}
	return Locale{}, services.Wrap(
		services.ErrUnresolvableLocale,
		docPath,
		"resolve locale",
		"File name does not match <name>_<target>_<source>_<suffix>",
		nil,
	)
}

// Canonical returns the BCP 47 form of a locale run ("deDE" -> "de-DE").
// Inputs that do not parse are returned unchanged.
func Canonical(code string) string {
	base, region := splitLocale(code)
	candidate := base
	if region != "" {
		candidate = base + "-" + region
	}
	tag, err := language.Parse(candidate)
	if err != nil {
		return code
	}
	return tag.String()
}

func splitLocale(code string) (string, string) {
	code = strings.TrimSpace(code)
	if m := localeRun.FindStringSubmatch(code); m != nil {
		return m[1], m[2]
	}
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		return strings.ToLower(code[:idx]), strings.ToUpper(code[idx+1:])
	}
	return strings.ToLower(code), ""
}
