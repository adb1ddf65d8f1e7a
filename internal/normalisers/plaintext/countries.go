package plaintext

// Country describes a UN member state by its ISO 3166-1 alpha-3 code.
type Country struct {
	Code   string
	Name   string
	Region string
}

// Countries maps ISO alpha-3 codes to names and regions. Codes missing
// from the table keep the code as the country name.
var Countries = map[string]Country{
	"AFG": {"AFG", "Afghanistan", "Asia"},
	"ARG": {"ARG", "Argentina", "Americas"},
	"AUS": {"AUS", "Australia", "Oceania"},
	"AUT": {"AUT", "Austria", "Europe"},
	"BGD": {"BGD", "Bangladesh", "Asia"},
	"BEL": {"BEL", "Belgium", "Europe"},
	"BRA": {"BRA", "Brazil", "Americas"},
	"CAN": {"CAN", "Canada", "Americas"},
	"CHE": {"CHE", "Switzerland", "Europe"},
	"CHL": {"CHL", "Chile", "Americas"},
	"CHN": {"CHN", "China", "Asia"},
	"COL": {"COL", "Colombia", "Americas"},
	"CUB": {"CUB", "Cuba", "Americas"},
	"CZE": {"CZE", "Czechia", "Europe"},
	"DEU": {"DEU", "Germany", "Europe"},
	"DNK": {"DNK", "Denmark", "Europe"},
	"DZA": {"DZA", "Algeria", "Africa"},
	"EGY": {"EGY", "Egypt", "Africa"},
	"ESP": {"ESP", "Spain", "Europe"},
	"ETH": {"ETH", "Ethiopia", "Africa"},
	"FIN": {"FIN", "Finland", "Europe"},
	"FRA": {"FRA", "France", "Europe"},
	"GBR": {"GBR", "United Kingdom", "Europe"},
	"GHA": {"GHA", "Ghana", "Africa"},
	"GRC": {"GRC", "Greece", "Europe"},
	"IDN": {"IDN", "Indonesia", "Asia"},
	"IND": {"IND", "India", "Asia"},
	"IRL": {"IRL", "Ireland", "Europe"},
	"IRN": {"IRN", "Iran", "Asia"},
	"IRQ": {"IRQ", "Iraq", "Asia"},
	"ISR": {"ISR", "Israel", "Asia"},
	"ITA": {"ITA", "Italy", "Europe"},
	"JPN": {"JPN", "Japan", "Asia"},
	"KEN": {"KEN", "Kenya", "Africa"},
	"KOR": {"KOR", "Republic of Korea", "Asia"},
	"MEX": {"MEX", "Mexico", "Americas"},
	"NGA": {"NGA", "Nigeria", "Africa"},
	"NLD": {"NLD", "Netherlands", "Europe"},
	"NOR": {"NOR", "Norway", "Europe"},
	"NZL": {"NZL", "New Zealand", "Oceania"},
	"PAK": {"PAK", "Pakistan", "Asia"},
	"PER": {"PER", "Peru", "Americas"},
	"PHL": {"PHL", "Philippines", "Asia"},
	"POL": {"POL", "Poland", "Europe"},
	"PRT": {"PRT", "Portugal", "Europe"},
	"PRK": {"PRK", "Democratic People's Republic of Korea", "Asia"},
	"RUS": {"RUS", "Russian Federation", "Europe"},
	"SAU": {"SAU", "Saudi Arabia", "Asia"},
	"SWE": {"SWE", "Sweden", "Europe"},
	"SYR": {"SYR", "Syria", "Asia"},
	"THA": {"THA", "Thailand", "Asia"},
	"TUR": {"TUR", "Turkey", "Asia"},
	"UKR": {"UKR", "Ukraine", "Europe"},
	"USA": {"USA", "United States", "Americas"},
	"VEN": {"VEN", "Venezuela", "Americas"},
	"VNM": {"VNM", "Viet Nam", "Asia"},
	"ZAF": {"ZAF", "South Africa", "Africa"},
	"SUN": {"SUN", "Soviet Union", "Europe"},
	"YUG": {"YUG", "Yugoslavia", "Europe"},
	"DDR": {"DDR", "German Democratic Republic", "Europe"},
	"EU":  {"EU", "European Union", "Europe"},
}

// LookupCountry returns the country for code, falling back to the code
// itself with an unknown region.
func LookupCountry(code string) Country {
	if c, ok := Countries[code]; ok {
		return c
	}
	return Country{Code: code, Name: code}
}
