package shared

// Color identifies one of the seven favor types. Each color is bound to a
// single god and a fixed value.
type Color string

const (
	Pink      Color = "pink"      // Afrodita
	LightBlue Color = "lightblue" // Artemisa
	Green     Color = "green"     // Dionisio
	Red       Color = "red"       // Ares
	Gold      Color = "gold"      // Atenea
	Purple    Color = "purple"    // Hades
	Yellow    Color = "yellow"    // Zeus
)

// Colors lists every color in god order, lowest value first.
var Colors = []Color{Pink, LightBlue, Green, Red, Gold, Purple, Yellow}

// Card represents a single card of the catalogue.
type Card struct {
	ID    int   `json:"id"`
	Value int   `json:"value"`
	Color Color `json:"color"`
}

// colorValues holds the favor value of each color; the catalogue holds
// exactly value-many cards of each color.
var colorValues = map[Color]int{
	Pink:      2,
	LightBlue: 2,
	Green:     2,
	Red:       3,
	Gold:      3,
	Purple:    4,
	Yellow:    5,
}

// catalogue is built once; card ids run from 1 to CatalogueSize.
var catalogue = buildCatalogue()

// CatalogueSize is the number of cards in play.
const CatalogueSize = 21

func buildCatalogue() []Card {
	cards := make([]Card, 0, CatalogueSize)
	id := 1
	for _, color := range Colors {
		for i := 0; i < colorValues[color]; i++ {
			cards = append(cards, Card{ID: id, Value: colorValues[color], Color: color})
			id++
		}
	}
	return cards
}

// AllCards returns a copy of the full catalogue ordered by id.
func AllCards() []Card {
	out := make([]Card, len(catalogue))
	copy(out, catalogue)
	return out
}

// CardIDs returns every catalogue id in ascending order.
func CardIDs() []int {
	ids := make([]int, len(catalogue))
	for i, c := range catalogue {
		ids[i] = c.ID
	}
	return ids
}

// LookupCard returns the card with the given id.
func LookupCard(id int) (Card, bool) {
	if id < 1 || id > len(catalogue) {
		return Card{}, false
	}
	return catalogue[id-1], true
}

// ColorValue returns the favor value of a color, 0 for unknown colors.
func ColorValue(c Color) int {
	return colorValues[c]
}
