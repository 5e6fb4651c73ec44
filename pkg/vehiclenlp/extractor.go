// Package vehiclenlp extracts structured vehicle fields (make, model, year,
// chassis code) from unstructured listing text using regex patterns and a
// small market database. It pre-fills descriptors so the normalizer gets
// structured signal even from free-text-only requests.
package vehiclenlp

import (
	"regexp"
	"strconv"
	"strings"
)

// Extraction is the structured result of parsing one text.
type Extraction struct {
	Make    string
	Model   string
	Year    int
	Chassis string
	Span    string // the text fragment the make/model came from
}

// makeAliases maps abbreviations and common spellings to canonical makes.
var makeAliases = map[string]string{
	"toyota":     "Toyota",
	"nissan":     "Nissan",
	"honda":      "Honda",
	"mazda":      "Mazda",
	"subaru":     "Subaru",
	"mitsubishi": "Mitsubishi",
	"mitsu":      "Mitsubishi",
	"suzuki":     "Suzuki",
	"isuzu":      "Isuzu",
	"daihatsu":   "Daihatsu",
	"lexus":      "Lexus",
	"acura":      "Acura",
	"infiniti":   "Infiniti",
	"datsun":     "Nissan",
}

// makeModels maps canonical make to the models seen in the import market.
var makeModels = map[string][]string{
	"Toyota":     {"Supra", "Sprinter Trueno", "Land Cruiser", "Chaser", "Mark II", "Soarer", "Celica", "MR2", "Crown", "Century", "Aristo", "Altezza"},
	"Nissan":     {"Skyline GT-R", "Skyline", "Silvia", "Fairlady Z", "180SX", "Laurel", "Cedric", "Gloria", "Pulsar GTI-R", "Stagea", "Pao", "Figaro"},
	"Honda":      {"NSX", "Civic Type R", "Integra Type R", "S2000", "Beat", "Prelude", "CR-X"},
	"Mazda":      {"RX-7", "RX-8", "Cosmo", "Roadster", "Autozam AZ-1"},
	"Subaru":     {"Impreza WRX STI", "Impreza", "Legacy", "Sambar", "SVX"},
	"Mitsubishi": {"Lancer Evolution", "GTO", "Pajero", "Delica", "Eclipse"},
	"Suzuki":     {"Cappuccino", "Jimny", "Alto Works"},
	"Isuzu":      {"117 Coupe", "Bellett", "VehiCROSS"},
	"Daihatsu":   {"Copen", "Midget"},
}

// uniqueModels maps models distinctive enough to identify a make on their own.
var uniqueModels map[string]string // model lowercase -> canonical make

// modelByMake maps make lowercase -> model lowercase -> canonical model.
var modelByMake map[string]map[string]string

var makeRe *regexp.Regexp

// JDM chassis codes: 2–6 letters followed by 1–3 digits, optionally a trailing
// letter ("BNR34", "FD3S", "JZA80", "AE86", "CP9A", "HDJ81").
var chassisRe = regexp.MustCompile(`(?i)\b([A-Z]{2,6}\d{1,3}[A-Z]?)\b`)

var (
	yearFullRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	yearAbbrRe = regexp.MustCompile(`'(\d{2})\b`)
)

func init() {
	uniqueModels = make(map[string]string)
	modelByMake = make(map[string]map[string]string)

	modelCount := make(map[string]int)
	for mk, models := range makeModels {
		lower := strings.ToLower(mk)
		modelByMake[lower] = make(map[string]string)
		for _, m := range models {
			ml := strings.ToLower(m)
			modelByMake[lower][ml] = m
			modelCount[ml]++
		}
	}
	for mk, models := range makeModels {
		for _, m := range models {
			ml := strings.ToLower(m)
			if modelCount[ml] == 1 {
				uniqueModels[ml] = mk
			}
		}
	}

	names := make([]string, 0, len(makeAliases))
	for alias := range makeAliases {
		names = append(names, regexp.QuoteMeta(alias))
	}
	// Longest first so "mitsubishi" wins over "mitsu".
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if len(names[j]) > len(names[i]) {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	makeRe = regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)
}

// Extract parses one listing text into structured fields. A zero Extraction
// means nothing recognizable was found.
func Extract(text string) Extraction {
	if strings.TrimSpace(text) == "" {
		return Extraction{}
	}

	var out Extraction
	out.Year = findYear(text)
	out.Chassis = findChassis(text)

	if loc := makeRe.FindStringSubmatchIndex(text); loc != nil {
		raw := text[loc[2]:loc[3]]
		out.Make = makeAliases[strings.ToLower(raw)]

		// Model usually follows the make within a short window.
		after := text[loc[1]:min(loc[1]+40, len(text))]
		model, spanEnd := findModel(out.Make, after)
		out.Model = model
		end := loc[1]
		if spanEnd > 0 {
			end = loc[1] + spanEnd
		}
		out.Span = strings.TrimSpace(text[loc[0]:end])
		return out
	}

	// No make named: a distinctive model can identify it alone.
	lower := strings.ToLower(text)
	for ml, mk := range uniqueModels {
		if idx := strings.Index(lower, ml); idx >= 0 {
			out.Make = mk
			out.Model = modelByMake[strings.ToLower(mk)][ml]
			out.Span = strings.TrimSpace(text[idx : idx+len(ml)])
			break
		}
	}
	return out
}

// findModel returns the canonical model and the end offset of its mention,
// preferring the longest model name that matches.
func findModel(mk, after string) (string, int) {
	lower := strings.ToLower(after)
	models := modelByMake[strings.ToLower(mk)]
	best, bestEnd := "", 0
	for ml, canonical := range models {
		idx := strings.Index(lower, ml)
		if idx < 0 {
			continue
		}
		if len(canonical) > len(best) {
			best = canonical
			bestEnd = idx + len(ml)
		}
	}
	return best, bestEnd
}

func findYear(text string) int {
	if m := yearFullRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y
	}
	if m := yearAbbrRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		// '69 and earlier reads as 20xx only for very low digits; classic
		// imports dominate, so two-digit years pivot at 30.
		if y < 30 {
			return 2000 + y
		}
		return 1900 + y
	}
	return 0
}

// findChassis returns the first token shaped like a JDM chassis code.
func findChassis(text string) string {
	if m := chassisRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}
