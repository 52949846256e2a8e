package models

// Section is one headed block of a poster
type Section struct {
	Icon    string `json:"icon"`
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// CompareSide is one column of a before/after comparison
type CompareSide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// Compare contrasts two sides of the topic
type Compare struct {
	Left  CompareSide `json:"left"`
	Right CompareSide `json:"right"`
}

// GridItem is one tile of the key-points grid
type GridItem struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Takeaway closes the poster with a summary and an optional question
type Takeaway struct {
	Summary  string `json:"summary"`
	Question string `json:"question,omitempty"`
}

// Poster is the normalized knowledge poster handed to the renderer.
// Compare and Takeaway are either complete or absent.
type Poster struct {
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	HeroIcon string     `json:"heroIcon"`
	Sections []Section  `json:"sections"`
	Compare  *Compare   `json:"compare,omitempty"`
	Grid     []GridItem `json:"grid"`
	Takeaway *Takeaway  `json:"takeaway,omitempty"`
}

// Card is one entry of a card list
type Card struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Icon        string   `json:"icon"`
}

// Array caps applied by the normalizer
const (
	MaxSections = 3
	MaxGrid     = 4
	MaxBullets  = 3
	MaxTags     = 4
)
