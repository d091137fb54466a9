// Copyright piiscan contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package address

// swissPostalCodes maps NPA codes to their principal locality. A subset of
// the official PLZ directory covering cantonal capitals and the largest
// municipalities; used as the postal-code confirmation reference.
var swissPostalCodes = map[string]string{
	"1000": "Lausanne", "1003": "Lausanne", "1200": "Genève",
	"1201": "Genève", "1204": "Genève", "1211": "Genève",
	"1227": "Carouge", "1260": "Nyon", "1290": "Versoix",
	"1400": "Yverdon-les-Bains", "1630": "Bulle", "1700": "Fribourg",
	"1800": "Vevey", "1820": "Montreux", "1870": "Monthey",
	"1920": "Martigny", "1950": "Sion", "2000": "Neuchâtel",
	"2300": "La Chaux-de-Fonds", "2500": "Biel/Bienne", "2502": "Biel/Bienne",
	"2800": "Delémont", "3000": "Bern", "3001": "Bern", "3011": "Bern",
	"3600": "Thun", "3900": "Brig", "3920": "Zermatt",
	"4000": "Basel", "4001": "Basel", "4051": "Basel", "4058": "Basel",
	"4410": "Liestal", "4500": "Solothurn", "4600": "Olten",
	"4900": "Langenthal", "5000": "Aarau", "5400": "Baden",
	"5600": "Lenzburg", "6000": "Luzern", "6003": "Luzern",
	"6300": "Zug", "6370": "Stans", "6390": "Engelberg",
	"6460": "Altdorf", "6500": "Bellinzona", "6600": "Locarno",
	"6900": "Lugano", "7000": "Chur", "7260": "Davos",
	"7500": "St. Moritz", "8000": "Zürich", "8001": "Zürich",
	"8002": "Zürich", "8003": "Zürich", "8004": "Zürich",
	"8005": "Zürich", "8006": "Zürich", "8008": "Zürich",
	"8050": "Zürich", "8200": "Schaffhausen", "8280": "Kreuzlingen",
	"8400": "Winterthur", "8500": "Frauenfeld", "8600": "Dübendorf",
	"8640": "Rapperswil", "8700": "Küsnacht", "8800": "Thalwil",
	"8810": "Horgen", "8820": "Wädenswil", "8910": "Affoltern am Albis",
	"9000": "St. Gallen", "9100": "Herisau", "9200": "Gossau",
	"9490": "Vaduz", "9500": "Wil",
}

// knownCities confirms city-name candidates. Keyed lowercase. Covers Swiss
// localities from the postal table plus frequent correspondents in the
// neighboring countries.
var knownCities = map[string]bool{
	"zürich": true, "zurich": true, "genève": true, "geneve": true,
	"genf": true, "geneva": true, "basel": true, "bâle": true,
	"bern": true, "berne": true, "lausanne": true, "winterthur": true,
	"luzern": true, "lucerne": true, "st. gallen": true, "st.gallen": true,
	"lugano": true, "biel": true, "bienne": true, "thun": true,
	"köniz": true, "la chaux-de-fonds": true, "fribourg": true,
	"freiburg": true, "schaffhausen": true, "chur": true, "vernier": true,
	"neuchâtel": true, "neuchatel": true, "uster": true, "sion": true,
	"zug": true, "olten": true, "aarau": true, "baden": true,
	"dübendorf": true, "kreuzlingen": true, "wil": true, "davos": true,
	"montreux": true, "vevey": true, "nyon": true, "carouge": true,
	"bellinzona": true, "locarno": true, "martigny": true, "monthey": true,
	"solothurn": true, "liestal": true, "frauenfeld": true, "herisau": true,
	"delémont": true, "altdorf": true, "stans": true, "glarus": true,
	"appenzell": true, "sarnen": true, "schwyz": true, "yverdon-les-bains": true,
	"rapperswil": true, "wädenswil": true, "horgen": true, "thalwil": true,
	"vaduz": true,
	// Frequent foreign correspondents
	"münchen": true, "munich": true, "berlin": true, "hamburg": true,
	"frankfurt": true, "stuttgart": true, "freiburg im breisgau": true,
	"konstanz": true, "wien": true, "vienna": true, "innsbruck": true,
	"salzburg": true, "paris": true, "lyon": true, "annecy": true,
	"grenoble": true, "strasbourg": true, "milano": true, "milan": true,
	"torino": true, "como": true, "roma": true,
}

// countryNames maps recognized country tokens (lowercase) to ISO codes.
var countryNames = map[string]string{
	"schweiz": "CH", "suisse": "CH", "svizzera": "CH", "switzerland": "CH",
	"liechtenstein": "LI",
	"deutschland": "DE", "germany": "DE", "allemagne": "DE",
	"österreich": "AT", "austria": "AT", "autriche": "AT", "oesterreich": "AT",
	"frankreich": "FR", "france": "FR", "francia": "FR",
	"italien": "IT", "italie": "IT", "italia": "IT", "italy": "IT",
	"niederlande": "NL", "netherlands": "NL", "pays-bas": "NL",
	"belgien": "BE", "belgique": "BE", "belgium": "BE",
	"luxemburg": "LU", "luxembourg": "LU",
}

// cantonNames are recognized as REGION components.
var cantonNames = map[string]bool{
	"aargau": true, "appenzell ausserrhoden": true, "appenzell innerrhoden": true,
	"basel-landschaft": true, "basel-stadt": true, "bern": true,
	"freiburg": true, "fribourg": true, "genf": true, "genève": true,
	"glarus": true, "graubünden": true, "jura": true, "luzern": true,
	"neuenburg": true, "neuchâtel": true, "nidwalden": true, "obwalden": true,
	"schaffhausen": true, "schwyz": true, "solothurn": true,
	"st. gallen": true, "tessin": true, "ticino": true, "thurgau": true,
	"uri": true, "waadt": true, "vaud": true, "wallis": true, "valais": true,
	"zug": true, "zürich": true,
}

// IsKnownCity reports whether name is in the known-cities reference table.
func IsKnownCity(name string) bool {
	return knownCities[normalizeKey(name)]
}

// LookupPostalCode returns the locality for a Swiss NPA code and whether
// the code exists in the reference table.
func LookupPostalCode(code string) (string, bool) {
	city, ok := swissPostalCodes[code]
	return city, ok
}
