package tracking

import "strings"

// keywordGroup binds a hint keyword to the kind it selects.
type keywordGroup struct {
	keyword string
	kind    Kind
}

// Hints are not mutually exclusive ("laporan-dan-izin"), so the first
// matching group wins and the order below is fixed.
var keywordGroups = []keywordGroup{
	{"laporan", KindIncidentReport},
	{"kehilangan", KindLostItem},
	{"izin", KindPermit},
	{"skck", KindBackground},
}

// Classify maps a free-form hint (route path, short code or legacy query
// value) to a Kind. Empty or unrecognised hints yield KindGeneric.
func Classify(hint string) Kind {
	h := strings.ToLower(hint)
	for _, g := range keywordGroups {
		if strings.Contains(h, g.keyword) {
			return g.kind
		}
	}
	return KindGeneric
}
