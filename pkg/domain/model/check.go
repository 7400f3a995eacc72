package model

// CheckRequest is the body of a text check
type CheckRequest struct {
	Text    string `json:"text"`
	Suggest bool   `json:"suggest"`
	Rerank  bool   `json:"rerank"`
}

// Misspelling is a rejected word in checked text
type Misspelling struct {
	Word        string   `json:"word"`
	Offset      int      `json:"offset"`
	RuneOffset  int      `json:"rune_offset"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// CheckResult is the outcome of checking a text
type CheckResult struct {
	ID           string        `json:"id"`
	Dictionary   string        `json:"dictionary"`
	User         string        `json:"user"`
	Words        int           `json:"words"`
	Misspellings []Misspelling `json:"misspellings"`
	Reranked     bool          `json:"reranked"`
}

// WordReport describes one word against a dictionary
type WordReport struct {
	Word        string   `json:"word"`
	Correct     bool     `json:"correct"`
	Forbidden   bool     `json:"forbidden"`
	Personal    bool     `json:"personal"`
	Suggestions []string `json:"suggestions"`
	Stems       []string `json:"stems"`
	Analyses    []string `json:"analyses"`
}

// UserWords lists a user's personal words for a dictionary
type UserWords struct {
	Dictionary string   `json:"dictionary"`
	User       string   `json:"user"`
	Words      []string `json:"words"`
}
