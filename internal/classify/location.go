package classify

import (
	"regexp"
	"strings"

	"jobalert/internal/normalize"
)

var usStateNames = []string{
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado", "connecticut",
	"delaware", "florida", "georgia", "hawaii", "idaho", "illinois", "indiana", "iowa",
	"kansas", "kentucky", "louisiana", "maine", "maryland", "massachusetts", "michigan",
	"minnesota", "mississippi", "missouri", "montana", "nebraska", "nevada", "new hampshire",
	"new jersey", "new mexico", "new york", "north carolina", "north dakota", "ohio",
	"oklahoma", "oregon", "pennsylvania", "rhode island", "south carolina", "south dakota",
	"tennessee", "texas", "utah", "vermont", "virginia", "washington", "west virginia",
	"wisconsin", "wyoming", "district of columbia",
}

var usStateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA", "HI", "ID", "IL", "IN", "IA",
	"KS", "KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX", "UT", "VT",
	"VA", "WA", "WV", "WI", "WY", "DC",
}

var (
	// Two-letter codes only count in the raw, upper-case form after a
	// separator ("Austin, TX", "Remote (NY)") so "in" or "or" never match.
	// CA, DE and IN double as country codes and are not trusted on their own.
	stateCodeRe = regexp.MustCompile(`(?:,|\(|\s-)\s*(?:` + strings.Join(unambiguousCodes(), "|") + `)(?:$|[\s,)/;-])`)
	stateNameRe = regexp.MustCompile(`\b(?:` + strings.Join(usStateNames, "|") + `)\b`)

	// Markers accepted in a location string.
	usLocationRe = regexp.MustCompile(`\b(?:us|usa|u\.s\.a?\.?|united states(?: of america)?)(?:$|[^a-z])`)
	// Stricter markers for free text, where a bare "us" is just a pronoun.
	usTextRe = regexp.MustCompile(`\b(?:usa|u\.s\.a?\.|united states|us[- ]based|us only|within the us|anywhere in the us)(?:$|[^a-z])`)

	remoteRe = regexp.MustCompile(`\bremote\b`)
)

// Places outside the US that show up in ATS location strings. Cities that
// share a name with a common US job hub (Dublin, Vancouver, Paris,
// Melbourne) are left to their country or region.
var nonUSPlaces = []string{
	// countries
	"canada", "mexico", "brazil", "argentina", "chile", "colombia", "peru",
	"united kingdom", "uk", "great britain", "england", "scotland", "wales", "ireland",
	"germany", "france", "spain", "portugal", "italy", "netherlands", "belgium",
	"switzerland", "austria", "poland", "sweden", "norway", "denmark", "finland",
	"czech republic", "czechia", "romania", "hungary", "greece", "turkey", "ukraine",
	"israel", "india", "pakistan", "china", "hong kong", "taiwan", "japan", "korea",
	"singapore", "malaysia", "indonesia", "philippines", "vietnam", "thailand",
	"australia", "new zealand", "south africa", "nigeria", "kenya", "egypt",
	"united arab emirates", "uae", "saudi arabia",
	// regions and provinces
	"emea", "apac", "latam", "europe", "eu", "asia", "ontario", "quebec",
	"british columbia", "alberta",
	// cities
	"london", "manchester", "edinburgh", "toronto", "montreal", "ottawa", "calgary",
	"berlin", "munich", "amsterdam", "madrid", "barcelona", "lisbon", "zurich",
	"stockholm", "warsaw", "bangalore", "bengaluru", "hyderabad", "pune", "mumbai",
	"chennai", "delhi", "gurgaon", "gurugram", "noida", "tel aviv", "tokyo", "seoul",
	"sydney", "sao paulo", "mexico city", "shanghai", "beijing", "shenzhen", "manila",
}

// ISO country codes that cannot be mistaken for a state code.
var nonUSCodes = []string{
	"GB", "UK", "FR", "ES", "IT", "NL", "BE", "CH", "AT", "SE", "NO", "DK", "FI", "PL",
	"PT", "IE", "JP", "CN", "KR", "SG", "AU", "NZ", "BR", "MX", "AE", "ZA", "PH", "HK", "TW",
}

var (
	nonUSPlaceRe = regexp.MustCompile(`\b(?:` + strings.Join(nonUSPlaces, "|") + `)\b`)
	nonUSCodeRe  = regexp.MustCompile(`(?:,|\(|\s-)\s*(?:` + strings.Join(nonUSCodes, "|") + `)(?:$|[\s,)/;-])`)
)

// Eligible is the location gate. Only an explicit non-US place rejects; an
// empty or uninformative location ("Remote", "Hybrid", "Multiple Locations")
// passes. A remote role pinned to a non-US region is still let through when
// the description names the US.
func (c *Classifier) Eligible(location, description string) bool {
	raw := strings.TrimSpace(location)
	if raw == "" {
		return true
	}

	loc := normalize.Fold(raw)
	if stateCodeRe.MatchString(raw) || stateNameRe.MatchString(loc) || usLocationRe.MatchString(loc) {
		return true
	}
	if nonUSPlaceRe.MatchString(loc) || nonUSCodeRe.MatchString(raw) {
		return remoteRe.MatchString(loc) && usTextRe.MatchString(normalize.Fold(description))
	}
	return true
}

func unambiguousCodes() []string {
	out := make([]string, 0, len(usStateCodes))
	for _, code := range usStateCodes {
		switch code {
		case "CA", "DE", "IN":
			continue
		}
		out = append(out, code)
	}
	return out
}
