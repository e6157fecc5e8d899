package ingest

// PairInput is an incoming question/answer pair before ingestion.
type PairInput struct {
	Keyword  string `json:"keyword"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Summary aggregates the outcome of a dataset load.
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
