// Package domain defines the core types, sentinel errors, and input
// validation shared by the ingestion and retrieval pipelines. It acts as
// the validation gate at pipeline entry points.
package domain

// QAPair is a stored knowledge unit: a curated question/answer pair
// labelled with a short keyword. The embedding vector is derived from
// the question and answer joined by a single space; it is immutable once
// stored, so recomputing requires re-insertion.
type QAPair struct {
	ID       string `json:"id"`
	Keyword  string `json:"keyword"`
	Question string `json:"question"`
	Answer   string `json:"answer"`

	// Embedding is populated during ingestion and never serialized
	// back to API clients.
	Embedding []float32 `json:"-"`
}

// EmbedText returns the text that gets embedded for a pair: question and
// answer joined by a single space.
func EmbedText(question, answer string) string {
	return question + " " + answer
}

// SearchHit is a QAPair returned by similarity search, decorated with the
// store's native similarity score. Higher means more similar; every hit
// clears the configured score threshold.
type SearchHit struct {
	QAPair
	Score float32 `json:"score"`
}

// QueryRequest carries one user question plus optional conversational
// context from earlier turns.
type QueryRequest struct {
	Query          string `json:"query"`
	PriorContext   string `json:"prior_context,omitempty"`
	CurrentContext string `json:"current_context,omitempty"`
}

// QueryResult is the outcome of one retrieval pipeline run. Hits preserve
// the store's descending-score order; ElapsedMillis is the wall-clock
// duration of the whole pipeline.
type QueryResult struct {
	Hits            []SearchHit `json:"results"`
	GeneratedAnswer string      `json:"generated_answer,omitempty"`
	ElapsedMillis   float64     `json:"elapsed_ms"`
}
