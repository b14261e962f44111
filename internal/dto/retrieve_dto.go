package dto

type RetrieveRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}

type RetrieveResponse struct {
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
	Hits      []int            `json:"hits"`
}
