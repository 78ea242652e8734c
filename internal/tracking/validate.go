package tracking

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// genericMinLen is the only rule applied to codes of unrecognised services.
const genericMinLen = 4

// codeFormat describes the PREFIX-YEAR-SUFFIX layout of one kind's codes.
type codeFormat struct {
	prefix  string
	example string
	re      *regexp.Regexp
}

const yearPattern = `(19\d{2}|20\d{2})`

func newCodeFormat(prefix, suffix, example string) codeFormat {
	return codeFormat{
		prefix:  prefix,
		example: example,
		re:      regexp.MustCompile(`^` + prefix + `-` + yearPattern + `-` + suffix + `$`),
	}
}

var formats = map[Kind]codeFormat{
	KindPermit:         newCodeFormat("IZN", `[A-Z0-9]{4,12}`, "IZN-2026-4GZ8QM"),
	KindLostItem:       newCodeFormat("KLH", `[A-Z0-9]{4,12}`, "KLH-2026-4GZ8QM"),
	KindIncidentReport: newCodeFormat("LPR", `\d{3,6}`, "LPR-2026-0142"),
	KindBackground:     newCodeFormat("SKCK", `\d{3,6}`, "SKCK-2026-0001"),
}

// isASCII reports whether s has no bytes outside 7-bit ASCII. Unicode case
// folding maps letters such as U+212A KELVIN SIGN onto K, so known formats
// are only matched after this check.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// IsValid reports whether candidate is a syntactically valid code for kind.
// Surrounding whitespace is ignored and an empty code is never valid.
// Known formats compare letters case-insensitively, ASCII only.
//
// KindGeneric accepts anything of at least four characters.
// TODO: tighten the generic rule once the backend publishes formats for
// services outside the four known families.
func IsValid(kind Kind, candidate string) bool {
	code := strings.TrimSpace(candidate)
	if code == "" {
		return false
	}
	f, ok := formats[kind]
	if !ok {
		return utf8.RuneCountInString(code) >= genericMinLen
	}
	return isASCII(code) && f.re.MatchString(strings.ToUpper(code))
}

// Example returns a sample code for kind, or "" for KindGeneric.
func Example(kind Kind) string {
	return formats[kind].example
}

// KindOfCode infers the kind from a code's prefix. It does not validate the
// rest of the code.
func KindOfCode(code string) Kind {
	prefix, _, ok := strings.Cut(strings.TrimSpace(code), "-")
	if !ok || !isASCII(prefix) {
		return KindGeneric
	}
	for _, k := range Kinds {
		if strings.EqualFold(formats[k].prefix, prefix) {
			return k
		}
	}
	return KindGeneric
}
