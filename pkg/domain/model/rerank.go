package model

// RerankItem is one misspelling sent to the LLM
type RerankItem struct {
	Word        string   `json:"word"`
	Context     string   `json:"context"`
	Suggestions []string `json:"suggestions"`
}

// RerankResponse is the LLM's JSON answer
type RerankResponse struct {
	Items []RerankedWord `json:"items"`
}

// RerankedWord holds the reordered suggestions of a misspelling
type RerankedWord struct {
	Word        string   `json:"word"`
	Suggestions []string `json:"suggestions"`
}
