package similarity

// Request captures the payload accepted by the similarity endpoint.
type Request struct {
	AdventureID int64 `json:"adventure_id"`
}

// SimilarAdventure is one ranked neighbor.
type SimilarAdventure struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	SimilarityScore float64 `json:"similarity_score"`
}

// Response lists neighbors by descending similarity.
type Response struct {
	SimilarAdventures []SimilarAdventure `json:"similar_adventures"`
}

// Record is a catalog entry.
type Record struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Snapshot is the serialized form of a whole catalog.
type Snapshot struct {
	Adventures []Record          `json:"adventures"`
	Neighbors  map[int64][]int64 `json:"neighbors"`
}
