package unitdata

// StructureInfo describes one building type from the static dataset.
type StructureInfo struct {
	Code         string
	Cost         int
	Power        int // negative values drain power
	BaseProvider bool
}

// structureTable lists every valid building type. Walls and decorative
// actors are deliberately absent so zone ownership ignores them.
var structureTable = map[string]StructureInfo{
	"fact":  {Code: "fact", Cost: 2500, Power: 0, BaseProvider: true},
	"const": {Code: "const", Cost: 2500, Power: 0, BaseProvider: true},
	"powr":  {Code: "powr", Cost: 300, Power: 100},
	"apwr":  {Code: "apwr", Cost: 500, Power: 200},
	"proc":  {Code: "proc", Cost: 1400, Power: -30},
	"silo":  {Code: "silo", Cost: 150, Power: -10},
	"barr":  {Code: "barr", Cost: 400, Power: -20},
	"tent":  {Code: "tent", Cost: 400, Power: -20},
	"weap":  {Code: "weap", Cost: 2000, Power: -30},
	"fix":   {Code: "fix", Cost: 1200, Power: -30},
	"syrd":  {Code: "syrd", Cost: 1000, Power: -30},
	"spen":  {Code: "spen", Cost: 1000, Power: -30},
	"afld":  {Code: "afld", Cost: 500, Power: -30},
	"hpad":  {Code: "hpad", Cost: 1500, Power: -10},
	"dome":  {Code: "dome", Cost: 1000, Power: -40},
	"atek":  {Code: "atek", Cost: 1500, Power: -200},
	"stek":  {Code: "stek", Cost: 1500, Power: -100},
	"kenn":  {Code: "kenn", Cost: 150, Power: -10},
	"gap":   {Code: "gap", Cost: 500, Power: -60},
	"pdox":  {Code: "pdox", Cost: 2800, Power: -200},
	"iron":  {Code: "iron", Cost: 2800, Power: -200},
	"mslo":  {Code: "mslo", Cost: 2500, Power: -100},
	"pbox":  {Code: "pbox", Cost: 600, Power: -15},
	"hbox":  {Code: "hbox", Cost: 600, Power: -15},
	"gun":   {Code: "gun", Cost: 600, Power: -40},
	"ftur":  {Code: "ftur", Cost: 600, Power: -20},
	"sam":   {Code: "sam", Cost: 750, Power: -20},
	"agun":  {Code: "agun", Cost: 800, Power: -50},
	"tsla":  {Code: "tsla", Cost: 1500, Power: -100},
}

// IsStructure reports whether the code names a valid building for
// zone-ownership purposes.
func IsStructure(code string) bool {
	_, ok := structureTable[lower(code)]
	return ok
}

// IsBaseProvider reports whether the building turns a zone into a main base.
func IsBaseProvider(code string) bool {
	info, ok := structureTable[lower(code)]
	return ok && info.BaseProvider
}

// Structure returns the dataset entry for a building code.
func Structure(code string) (StructureInfo, bool) {
	info, ok := structureTable[lower(code)]
	return info, ok
}
