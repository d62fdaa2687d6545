package model

// Chunk is a bounded-size segment of a document's extracted text, the unit of
// embedding and retrieval. Indices are zero-based and contiguous per document.
type Chunk struct {
	DocumentKey string    `json:"document_key"`
	ChunkIndex  int       `json:"chunk_index"`
	Text        string    `json:"text"`
	Embedding   []float32 `json:"embedding"`
	Ctime       int64     `json:"ctime"`
}

// ScoredChunk pairs a cached chunk with its similarity score for one query.
type ScoredChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float32 `json:"score"`
}
