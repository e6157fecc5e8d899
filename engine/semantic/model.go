package semantic

// Payload is the fixed record stored alongside each point. The schema is
// fully known in this domain, so the fields are typed rather than an open
// map.
type Payload struct {
	Keyword  string
	Question string
	Answer   string
}

// VectorRecord is a single point to store in Qdrant.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Payload   Payload
}

// SearchResult is a single similarity-search hit in store order.
type SearchResult struct {
	ID      string
	Score   float32
	Payload Payload
}
