package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	// VectorField is the schema alias of the vector attribute ("vector" when empty).
	VectorField string
	// PreFilter is an optional FT.SEARCH expression applied before KNN, e.g. "@category:{saas}".
	PreFilter    string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Distance is the raw cosine distance reported by the engine.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
