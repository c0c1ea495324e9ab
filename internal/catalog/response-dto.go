package catalog

type ServiceListResponse struct {
	Services []TourService `json:"services"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}
