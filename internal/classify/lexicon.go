package classify

// nonCompanyTerms are company-field values that never denote an organization.
var nonCompanyTerms = toSet(
	"self-employed", "self employed", "selfemployed", "self",
	"freelance", "freelancer", "freelancing",
	"independent", "independent consultant", "independent contractor",
	"consultant", "contractor",
	"n/a", "na", "n.a.", "none", "nil", "null", "unknown", "not applicable",
	"unemployed", "retired", "student", "intern",
	"seeking", "seeking opportunities", "looking for work", "looking for opportunities",
	"open to work", "between jobs", "career break", "sabbatical",
	"various", "multiple", "several", "others", "other",
	"home", "homemaker", "stay at home parent", "volunteer",
	"me", "myself", "personal", "test",
)

// countryTerms holds country names and common short forms.
var countryTerms = toSet(
	"afghanistan", "albania", "algeria", "argentina", "armenia", "australia",
	"austria", "azerbaijan", "bahrain", "bangladesh", "belarus", "belgium",
	"bolivia", "bosnia and herzegovina", "brazil", "bulgaria", "cambodia",
	"cameroon", "canada", "chile", "china", "colombia", "costa rica", "croatia",
	"cuba", "cyprus", "czech republic", "czechia", "denmark", "dominican republic",
	"ecuador", "egypt", "el salvador", "estonia", "ethiopia", "finland", "france",
	"georgia", "germany", "ghana", "greece", "guatemala", "honduras", "hong kong",
	"hungary", "iceland", "india", "indonesia", "iran", "iraq", "ireland",
	"israel", "italy", "jamaica", "japan", "jordan", "kazakhstan", "kenya",
	"kuwait", "latvia", "lebanon", "lithuania", "luxembourg", "malaysia",
	"malta", "mexico", "moldova", "morocco", "nepal", "netherlands",
	"the netherlands", "new zealand", "nicaragua", "nigeria", "north macedonia",
	"norway", "oman", "pakistan", "panama", "paraguay", "peru", "philippines",
	"poland", "portugal", "qatar", "romania", "russia", "saudi arabia",
	"senegal", "serbia", "singapore", "slovakia", "slovenia", "south africa",
	"south korea", "korea", "spain", "sri lanka", "sweden", "switzerland",
	"taiwan", "tanzania", "thailand", "tunisia", "turkey", "turkiye", "uganda",
	"ukraine", "united arab emirates", "uae", "united kingdom", "uk",
	"great britain", "england", "scotland", "wales", "united states",
	"united states of america", "usa", "us", "u.s.", "u.s.a.", "america",
	"uruguay", "uzbekistan", "venezuela", "vietnam", "zambia", "zimbabwe",
)

// enclosedTerms mark a real but undisclosed employer.
var enclosedTerms = toSet(
	"stealth", "stealth mode", "stealth startup", "stealth mode startup",
	"stealth company", "stealth ai startup", "stealth startup company",
	"confidential", "confidential company", "undisclosed", "undisclosed company",
	"tbd", "tba", "to be announced", "to be determined",
	"private", "private company", "unannounced", "secret", "hidden",
	"something new", "building something new", "new venture", "new startup",
)

// companySuffixes are trailing tokens that mark a legal entity or an
// organizational name.
var companySuffixes = toSet(
	"inc", "incorporated", "llc", "l.l.c", "ltd", "limited", "corp",
	"corporation", "co", "company", "plc", "lp", "llp", "pllc", "pc", "gmbh",
	"ag", "sa", "sas", "sarl", "srl", "spa", "bv", "nv", "ab", "as", "oy",
	"pty", "pvt", "kk", "kg",
	"group", "holdings", "partners", "ventures", "capital", "labs", "lab",
	"studio", "studios", "technologies", "technology", "solutions", "systems",
	"software", "consulting", "consultancy", "agency", "media", "networks",
	"industries", "enterprises", "associates", "foundation", "institute",
	"university", "bank", "fund", "advisors", "advisory", "analytics",
	"therapeutics", "pharmaceuticals", "health", "healthcare", "logistics",
	"manufacturing", "properties", "realty", "collective", "works",
)

func toSet(terms ...string) map[string]bool {
	m := make(map[string]bool, len(terms))
	for _, t := range terms {
		m[t] = true
	}
	return m
}
