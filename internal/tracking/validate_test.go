package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid_Examples(t *testing.T) {
	for _, k := range Kinds {
		t.Run(string(k), func(t *testing.T) {
			assert.True(t, IsValid(k, Example(k)), "example %q", Example(k))
			assert.True(t, IsValid(k, "  "+Example(k)+" "), "surrounding whitespace is trimmed")
		})
	}
}

func TestIsValid_EmptyNeverValid(t *testing.T) {
	for _, k := range append(Kinds, KindGeneric) {
		assert.False(t, IsValid(k, ""), "kind %s", k)
		assert.False(t, IsValid(k, "   "), "kind %s", k)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		code string
		want bool
	}{
		{"permit lowercase", KindPermit, "izn-2026-4gz8qm", true},
		{"permit min suffix", KindPermit, "IZN-2026-ABCD", true},
		{"permit max suffix", KindPermit, "IZN-2026-ABCDEF123456", true},
		{"permit suffix too short", KindPermit, "IZN-2026-ABC", false},
		{"permit suffix too long", KindPermit, "IZN-2026-ABCDEF1234567", false},
		{"permit suffix symbol", KindPermit, "IZN-2026-4GZ8Q!", false},
		{"permit wrong prefix", KindPermit, "KLH-2026-4GZ8QM", false},
		{"permit year 1899", KindPermit, "IZN-1899-4GZ8QM", false},
		{"permit year 2100", KindPermit, "IZN-2100-4GZ8QM", false},
		{"permit year 1900", KindPermit, "IZN-1900-4GZ8QM", true},
		{"permit year 2099", KindPermit, "IZN-2099-4GZ8QM", true},
		{"lost item", KindLostItem, "KLH-2026-4GZ8QM", true},
		{"lost item suffix too short", KindLostItem, "KLH-2026-4GZ", false},
		{"incident", KindIncidentReport, "LPR-2026-0142", true},
		{"incident min digits", KindIncidentReport, "LPR-2026-014", true},
		{"incident too few digits", KindIncidentReport, "LPR-2026-01", false},
		{"incident too many digits", KindIncidentReport, "LPR-2026-0142000", false},
		{"incident letter in suffix", KindIncidentReport, "LPR-2026-014A", false},
		{"background", KindBackground, "SKCK-2026-0001", true},
		{"background six digits", KindBackground, "SKCK-2026-000001", true},
		{"background letter in suffix", KindBackground, "SKCK-2026-00O1", false},
		{"background seven digits", KindBackground, "SKCK-2026-0000001", false},
		{"permit mixed case", KindPermit, "Izn-2026-4gZ8qM", true},
		{"permit kelvin sign suffix", KindPermit, "IZN-2026-\u212a\u212a\u212a\u212a", false},
		{"permit long s suffix", KindPermit, "IZN-2026-\u017fABC", false},
		{"background long s prefix", KindBackground, "\u017fKCK-2026-0001", false},
		{"background kelvin sign prefix", KindBackground, "S\u212aCK-2026-0001", false},
		{"incident fullwidth digits", KindIncidentReport, "LPR-2026-\uff10\uff11\uff12", false},
		{"generic four chars", KindGeneric, "abcd", true},
		{"generic three chars", KindGeneric, "abc", false},
		{"generic trims before counting", KindGeneric, "  abc  ", false},
		{"generic accepts typed codes", KindGeneric, "bad-code", true},
		{"unknown kind falls back to generic", Kind("other"), "abcd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.kind, tt.code))
		})
	}
}

func TestKindOfCode(t *testing.T) {
	assert.Equal(t, KindPermit, KindOfCode("IZN-2026-4GZ8QM"))
	assert.Equal(t, KindLostItem, KindOfCode("klh-2026-4gz8qm"))
	assert.Equal(t, KindIncidentReport, KindOfCode("LPR-2026-0142"))
	assert.Equal(t, KindBackground, KindOfCode("SKCK-2026-0001"))
	assert.Equal(t, KindGeneric, KindOfCode("ABC-2026-0001"))
	assert.Equal(t, KindGeneric, KindOfCode("\u017fKCK-2026-0001"))
	assert.Equal(t, KindGeneric, KindOfCode("nodash"))
	assert.Equal(t, KindGeneric, KindOfCode(""))
}
