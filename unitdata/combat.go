// Package unitdata holds the static Red Alert unit and structure tables.
// Everything here is read-only process data; no files are loaded at runtime.
package unitdata

// Category classifies a unit type for target-assignment doctrine.
type Category string

const (
	InfMeat  Category = "INF_MEAT" // cheap line infantry
	InfAT    Category = "INF_AT"   // anti-tank / anti-air infantry
	MBT      Category = "MBT"      // main battle tanks
	AFV      Category = "AFV"      // light vehicles, anti-air trucks
	Arty     Category = "ARTY"     // long-range artillery
	Defense  Category = "DEFENSE"  // static defense structures
	Aircraft Category = "AIRCRAFT"
	Other    Category = "OTHER" // non-combat or unknown
)

type combatEntry struct {
	Category Category
	Score    float64
}

// combatTable maps a lowercase type code to its category and combat score.
// Scores are relative strength used for load balancing and zone strength
// roll-ups, not game damage values.
var combatTable = map[string]combatEntry{
	"e1":   {InfMeat, 1.0},
	"e3":   {InfAT, 3.0},
	"e6":   {Other, 0.0},
	"jeep": {AFV, 4.0},
	"ftrk": {AFV, 5.0},
	"1tnk": {MBT, 6.0},
	"2tnk": {MBT, 8.0},
	"3tnk": {MBT, 10.0},
	"4tnk": {MBT, 18.0},
	"ctnk": {MBT, 15.0},
	"v2rl": {Arty, 8.0},
	"arty": {Arty, 8.0},
	"apc":  {AFV, 5.0},
	"harv": {Other, 0.0},
	"mcv":  {Other, 0.0},
	"yak":  {Aircraft, 8.0},
	"mig":  {Aircraft, 12.0},
	"heli": {Aircraft, 12.0},
	"mh60": {Aircraft, 12.0},

	// Defense structures carry a score so zone strength accounts for them,
	// but the tracker excludes the whole category.
	"pbox": {Defense, 8.0},
	"gun":  {Defense, 15.0},
	"ftur": {Defense, 12.0},
	"sam":  {Defense, 10.0},
	"agun": {Defense, 12.0},
	"tsla": {Defense, 25.0},
}

// CombatInfo returns the category and combat score for a type code.
// Unknown or empty codes resolve to (Other, 0).
func CombatInfo(code string) (Category, float64) {
	e, ok := combatTable[lower(code)]
	if !ok {
		return Other, 0
	}
	return e.Category, e.Score
}

// KnownCombatType reports whether the code appears in the combat table.
func KnownCombatType(code string) bool {
	_, ok := combatTable[lower(code)]
	return ok
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
