// Package tracking classifies status-check hints into service kinds and
// validates submission codes against each kind's format.
package tracking

// Kind identifies a citizen-facing service that issues tracking codes.
type Kind string

const (
	KindPermit         Kind = "permit"                 // izin keramaian
	KindLostItem       Kind = "lost-item-report"       // surat tanda kehilangan
	KindIncidentReport Kind = "online-incident-report" // laporan online
	KindBackground     Kind = "background-check"       // SKCK
	KindGeneric        Kind = "generic"
)

// Kinds lists every non-generic kind in classification order.
var Kinds = []Kind{KindIncidentReport, KindLostItem, KindPermit, KindBackground}

func (k Kind) String() string {
	return string(k)
}

// Label returns the Indonesian service name shown to citizens.
func (k Kind) Label() string {
	switch k {
	case KindPermit:
		return "Izin Keramaian"
	case KindLostItem:
		return "Surat Tanda Kehilangan"
	case KindIncidentReport:
		return "Laporan Online"
	case KindBackground:
		return "SKCK"
	default:
		return "Pelayanan"
	}
}

// ParseKind maps a canonical kind name back to a Kind. Unknown names yield
// KindGeneric and false.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindPermit, KindLostItem, KindIncidentReport, KindBackground, KindGeneric:
		return k, true
	}
	return KindGeneric, false
}
