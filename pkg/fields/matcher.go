package fields

import "strings"

// Canonical fact keys.
const (
	KeyCompanyName          = "company_name"
	KeyEIN                  = "ein"
	KeyAddressLine1         = "address_line_1"
	KeyAddressLine2         = "address_line_2"
	KeyCity                 = "city"
	KeyState                = "state"
	KeyZipCode              = "zip_code"
	KeyPhone                = "phone"
	KeyEmail                = "email"
	KeyWebsite              = "website"
	KeyIncorporationDate    = "incorporation_date"
	KeyStateOfIncorporation = "state_of_incorporation"
)

// keyAliases binds one canonical key to the normalized name variants seen
// on external forms.
type keyAliases struct {
	key     string
	aliases []string
}

// aliasTable is ordered: when more than one key's aliases match at the same
// tier, the first entry wins. Aliases are stored in normalized form.
var aliasTable = []keyAliases{
	{KeyCompanyName, []string{
		"company name", "business name", "legal name", "entity name",
		"name of company", "company", "business", "entity",
	}},
	{KeyEIN, []string{
		"ein", "employer id", "tax id", "taxid", "federal id", "fein",
		"employer identification number", "federal tax id",
	}},
	{KeyAddressLine1, []string{
		"address", "street address", "address line 1", "address1", "street",
		"mailing address", "physical address",
	}},
	{KeyAddressLine2, []string{
		"address line 2", "address2", "suite", "unit",
	}},
	{KeyCity, []string{"city"}},
	{KeyState, []string{"state", "province"}},
	{KeyZipCode, []string{
		"zip", "zip code", "postal code", "zipcode", "postalcode", "postal",
	}},
	{KeyPhone, []string{
		"phone", "phone number", "telephone", "tel", "contact phone", "phone num",
	}},
	{KeyEmail, []string{
		"email", "email address", "e mail", "email addr",
	}},
	{KeyWebsite, []string{
		"website", "web site", "url", "homepage",
	}},
	{KeyIncorporationDate, []string{
		"incorporation date", "date of incorporation", "inc date", "date incorporated",
	}},
	{KeyStateOfIncorporation, []string{
		"state of incorporation", "incorporation state", "inc state",
		"state incorporated", "incorporated in",
	}},
}

// Match resolves an arbitrary external field name to a canonical fact key.
// Three tiers are tried in strict priority order: exact alias match,
// substring match in either direction, then word overlap of at least two
// tokens. Returns ok=false when nothing matches; the caller should treat
// that as "field requires user input", not as an error.
func Match(fieldName string) (string, bool) {
	normalized := Normalize(fieldName)
	if normalized == "" {
		return "", false
	}

	// Tier 1: exact alias match.
	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			if normalized == alias {
				return entry.key, true
			}
		}
	}

	// Tier 2: substring match, either direction.
	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			if strings.Contains(normalized, alias) || strings.Contains(alias, normalized) {
				return entry.key, true
			}
		}
	}

	// Tier 3: word overlap of at least two tokens.
	words := tokenSet(normalized)
	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			common := 0
			for token := range tokenSet(alias) {
				if words[token] {
					common++
				}
			}
			if common >= 2 {
				return entry.key, true
			}
		}
	}

	return "", false
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(s) {
		set[token] = true
	}
	return set
}

// CategoryFor classifies a canonical fact key for filtering and display.
func CategoryFor(factKey string) string {
	switch {
	case factKey == KeyCompanyName || factKey == "dba_name":
		return "company_info"
	case factKey == KeyEIN || factKey == "tax_id":
		return "legal"
	case strings.HasPrefix(factKey, "address"):
		return "location"
	case factKey == KeyPhone || factKey == KeyEmail || factKey == KeyWebsite:
		return "contact"
	case strings.Contains(factKey, "incorporation") || strings.Contains(factKey, "date"):
		return "legal"
	default:
		return "company_info"
	}
}
