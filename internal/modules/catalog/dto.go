package catalog

type CreateResourceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Kind        string  `json:"kind" binding:"required,oneof=dwelling event_space"`
	MonthlyRate float64 `json:"monthly_rate" binding:"required,gt=0"`
}
