package match_test

import (
	"resolver/internal/match"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercase and trim",
			in:   "  Acme GmbH  ",
			want: "acme gmbh",
		},
		{
			name: "legal form folded",
			in:   "Acme Aktiengesellschaft",
			want: "acme ag",
		},
		{
			name: "long legal form folded",
			in:   "Acme Gesellschaft mit beschränkter Haftung",
			want: "acme gmbh",
		},
		{
			name: "transliterated legal form folded",
			in:   "Acme Gesellschaft mit beschraenkter Haftung",
			want: "acme gmbh",
		},
		{
			name: "accent-stripped legal form folded",
			in:   "Acme Gesellschaft mit beschrankter Haftung",
			want: "acme gmbh",
		},
		{
			name: "european company folded before plain AG",
			in:   "Allianz Europäische Aktiengesellschaft",
			want: "allianz se",
		},
		{
			name: "registry noise removed",
			in:   "Acme GmbH, Amtsgericht München HRB 12345",
			want: "acme gmbh münchen 12345",
		},
		{
			name: "english registry noise removed",
			in:   "Acme Ltd (Commercial Register)",
			want: "acme ltd",
		},
		{
			name: "punctuation collapsed",
			in:   "Müller & Söhne GmbH & Co. KG",
			want: "müller söhne gmbh co kg",
		},
		{
			name: "short registry codes removed only as tokens",
			in:   "Service Provider GmbH",
			want: "service provider gmbh",
		},
		{
			name: "standalone registry code removed",
			in:   "VR 4711 Turnverein Lichtenberg eingetragener Verein",
			want: "4711 turnverein lichtenberg ev",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, match.CanonicalName(tc.in))
		})
	}
}

func TestCanonicalNameEquivalences(t *testing.T) {
	pairs := [][2]string{
		{"Acme Aktiengesellschaft", "Acme AG"},
		{"Beta Gesellschaft mit beschränkter Haftung", "Beta GmbH"},
		{"Gamma Offene Handelsgesellschaft", "Gamma OHG"},
		{"Delta Eingetragene Genossenschaft", "Delta eG"},
		{"Epsilon Gesellschaft bürgerlichen Rechts", "Epsilon GbR"},
		{"Epsilon Gesellschaft buergerlichen Rechts", "Epsilon GbR"},
	}

	for _, p := range pairs {
		require.Equal(t, match.CanonicalName(p[0]), match.CanonicalName(p[1]),
			"%q and %q should canonicalize identically", p[0], p[1])
	}
}

func TestCanonicalNameIdempotent(t *testing.T) {
	inputs := []string{
		"Acme GmbH",
		"Adler Real Estate Aktiengesellschaft, Amtsgericht Berlin HRB 180360",
		"Müller & Söhne GmbH & Co. KG",
		"",
		"   ",
		"123456",
	}

	// a pile of generated company names to shake out ordering bugs in the
	// replacement tables
	faker := gofakeit.New(42)
	for i := 0; i < 200; i++ {
		inputs = append(inputs, faker.Company()+" "+faker.CompanySuffix())
	}

	for _, in := range inputs {
		once := match.CanonicalName(in)
		require.Equal(t, once, match.CanonicalName(once), "canonicalize must be idempotent for %q", in)
	}
}

func TestIsLegalForm(t *testing.T) {
	for _, tok := range []string{"gmbh", "ag", "kg", "se", "ewiv"} {
		require.True(t, match.IsLegalForm(tok), "%q is a legal form", tok)
	}
	for _, tok := range []string{"acme", "holding", "", "12345"} {
		require.False(t, match.IsLegalForm(tok), "%q is not a legal form", tok)
	}
}
