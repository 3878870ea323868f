package dto

type ImageResult struct {
	Id         int64   `json:"id"`
	Prompt     string  `json:"prompt"`
	ImageURL   string  `json:"image_url"`
	ClipScore  float64 `json:"clipscore"`
	Similarity float64 `json:"similarity"`
}

type SearchResponse struct {
	Query   string        `json:"query"`
	Results []ImageResult `json:"results"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	ChatEnabled bool   `json:"chat_enabled"`
	ChatSockets int    `json:"chat_sockets"`
}

// IndexImageMessage is the payload on the image indexing topic.
type IndexImageMessage struct {
	ImageId int64 `json:"image_id"`
}
