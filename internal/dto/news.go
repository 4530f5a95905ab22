package dto

type NewsResponse struct {
	Type    int           `json:"Type"`
	Message string        `json:"Message"`
	Data    []NewsArticle `json:"Data"`
}

type NewsArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedOn int64  `json:"published_on"`
}
