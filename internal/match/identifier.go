package match

import (
	"regexp"
	"strings"
	"unicode"
)

// Registry enumerates the German register divisions a registration identifier
// can belong to. The set is closed: rows scraped from the portal always carry
// one of these prefixes or none at all.
type Registry int

const (
	// RegistryHRB is Handelsregister B (corporations: GmbH, AG). It is the
	// default when an identifier carries digits but no recognizable prefix.
	RegistryHRB Registry = iota
	// RegistryHRA is Handelsregister A (sole proprietors, partnerships).
	RegistryHRA
	// RegistryPR is the Partnerschaftsregister.
	RegistryPR
	// RegistryGNR is the Genossenschaftsregister.
	RegistryGNR
	// RegistryVR is the Vereinsregister.
	RegistryVR
	// RegistryGUR is the Gueterrechtsregister.
	RegistryGUR
	// RegistryEWIV covers European economic interest groupings.
	RegistryEWIV
	// RegistrySE covers European companies.
	RegistrySE
	// RegistrySCE covers European cooperatives.
	RegistrySCE
	// RegistrySPE covers European private companies.
	RegistrySPE
)

var registryNames = [...]string{"HRB", "HRA", "PR", "GNR", "VR", "GUR", "EWIV", "SE", "SCE", "SPE"}

// String returns the upper-case register prefix, e.g. "HRB".
func (r Registry) String() string {
	if r < 0 || int(r) >= len(registryNames) {
		return ""
	}

	return registryNames[r]
}

// Identifier is a parsed registration identifier: a register division, the
// digit body, and an optional trailing letter. Two identifiers denote the same
// register entry when their Registry and Number are equal; the suffix only
// participates in similarity, which tolerates OCR and formatting noise.
type Identifier struct {
	Registry Registry
	// Number is the digit body with all formatting removed.
	Number string
	// Suffix is the optional single trailing letter, 0 when absent.
	Suffix byte
}

// String returns the normalized wire form, upper-case and whitespace-free,
// e.g. "HRB259502" or "HRA57863B".
func (id Identifier) String() string {
	s := id.Registry.String() + id.Number
	if id.Suffix != 0 {
		s += string(id.Suffix)
	}

	return s
}

// Equal reports whether two identifiers refer to the same register entry.
// The suffix letter is deliberately excluded.
func (id *Identifier) Equal(other *Identifier) bool {
	if id == nil || other == nil {
		return id == other
	}

	return id.Registry == other.Registry && id.Number == other.Number
}

// identifierBody matches the digit body after prefix stripping: one to eight
// digits optionally followed by exactly one letter.
var identifierBody = regexp.MustCompile(`^([0-9]{1,8})([A-Z])?$`)

// registryPrefixes is ordered longest-first so three-letter prefixes are not
// shadowed by their two-letter cousins.
var registryPrefixes = []struct {
	prefix   string
	registry Registry
}{
	{"EWIV", RegistryEWIV},
	{"GNR", RegistryGNR},
	{"GUR", RegistryGUR},
	{"HRA", RegistryHRA},
	{"HRB", RegistryHRB},
	{"SCE", RegistrySCE},
	{"SPE", RegistrySPE},
	{"PR", RegistryPR},
	{"SE", RegistrySE},
	{"VR", RegistryVR},
}

// ParseIdentifier parses a free-form registration string ("HRB 259502",
// "hrb: 259502", "259 502A") into an Identifier. The registry prefix is
// optional and defaults to HRB. It returns nil when the input contains no
// acceptable digit sequence; malformed input is an expected condition, not an
// error, because the caller may still resolve by name alone.
func ParseIdentifier(raw string) *Identifier {
	s := strings.ToUpper(strings.TrimSpace(raw))
	// the portal prints the Gueterrechtsregister prefix with an umlaut
	s = strings.ReplaceAll(s, "Ü", "U")
	if s == "" {
		return nil
	}

	registry := RegistryHRB
	for _, p := range registryPrefixes {
		if strings.HasPrefix(s, p.prefix) {
			registry = p.registry
			s = strings.TrimLeft(s[len(p.prefix):], ": \t")

			break
		}
	}

	// drop interior whitespace: "259 502" and "123 456 A" are common
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)

	m := identifierBody.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	id := &Identifier{Registry: registry, Number: m[1]}
	if m[2] != "" {
		id.Suffix = m[2][0]
	}

	return id
}

// embeddedIdentifier finds a registration identifier inside free text, e.g. a
// query name like "Adler Real Estate AG HRB 180360". Prefix alternation is
// ordered longest-first for the same shadowing reason as registryPrefixes.
var embeddedIdentifier = regexp.MustCompile(
	`(?i)\b(EWIV|GNR|G\x{dc}R|GUR|HRA|HRB|SCE|SPE|PR|SE|VR)\s*:?\s*([0-9]{1,8})\s*([A-Za-z])?\b`)

// ExtractIdentifier scans free text for an embedded, explicitly prefixed
// registration identifier and returns the first one found, or nil. Unlike
// ParseIdentifier it never applies the HRB default: bare digit runs inside a
// company name are usually not register numbers.
func ExtractIdentifier(text string) *Identifier {
	m := embeddedIdentifier.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	return ParseIdentifier(m[1] + " " + m[2] + m[3])
}
