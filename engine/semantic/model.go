package semantic

// Hit is a single vector search match. ExternalID is the corpus key
// (IsraelLawID for laws, CaseNumber for judgments); the full record lives in
// the document store, never in the index payload.
type Hit struct {
	ExternalID string  `json:"external_id"`
	Score      float32 `json:"score"`
}

// VectorRecord is one vector to store for a corpus record.
type VectorRecord struct {
	ExternalID string
	Embedding  []float32
	Name       string
}
