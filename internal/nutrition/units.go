package nutrition

import "strings"

// gramsPerUnit maps serving units to approximate gram weights. Weight units
// are exact; everything else is a common-portion estimate. "serving" means
// one 100 g database portion.
var gramsPerUnit = map[string]float64{
	// weight
	"g": 1, "gram": 1, "grams": 1,
	"kg": 1000, "kilogram": 1000,
	"oz": 28.35, "ounce": 28.35, "ounces": 28.35,
	"lb": 453.592, "pound": 453.592, "pounds": 453.592,

	// volume and dishware
	"cup": 240, "cups": 240,
	"tbsp": 15, "tablespoon": 15, "tablespoons": 15,
	"tsp": 5, "teaspoon": 5, "teaspoons": 5,
	"bowl": 300, "bowls": 300,
	"plate": 300, "plates": 300,
	"glass": 240,

	// size descriptors
	"small": 80, "medium": 130, "large": 180,
	"standard": 100, "regular": 130,

	// countable pieces
	"piece": 30, "pieces": 30,
	"slice": 30, "slices": 30,
	"chip": 5, "chips": 5,
	"nacho": 7, "nachos": 7,
	"cracker": 5, "crackers": 5,
	"cookie": 30, "cookies": 30,
	"strip": 20, "strips": 20,
	"nugget": 18, "nuggets": 18,
	"wing": 30, "wings": 30,
	"bite": 15, "bites": 15,
	"scoop": 70, "scoops": 70,
	"handful": 30,
	"bar": 50, "bars": 50,
	"patty": 85, "patties": 85,
	"fillet": 170, "fillets": 170,
	"breast": 170, "breasts": 170,
	"thigh": 115, "thighs": 115,
	"drumstick": 75, "drumsticks": 75,
	"egg": 50, "eggs": 50,
	"wrap": 60, "wraps": 60,
	"tortilla": 50, "tortillas": 50,
	"roll": 50, "rolls": 50,

	// database-standard portions
	"serving": 100, "servings": 100,
	"portion": 100, "portions": 100,
}

// gramsFor converts a quantity+unit into grams. Unrecognized units fall
// back to defaultGrams per unit of quantity.
func gramsFor(quantity float64, unit string, defaultGrams float64) (grams float64, known bool) {
	perUnit, ok := gramsPerUnit[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return quantity * defaultGrams, false
	}
	return quantity * perUnit, true
}
