package catalog

type CreateServiceRequest struct {
	Type            string  `json:"type" binding:"required"`
	Name            string  `json:"name" binding:"required,min=3,max=120"`
	Description     string  `json:"description"`
	BasePrice       float64 `json:"base_price" binding:"required,gt=0"`
	Currency        string  `json:"currency" binding:"omitempty,oneof=MAD EUR USD"`
	DurationMinutes int     `json:"duration_minutes" binding:"omitempty,gt=0"`
	Capacity        int     `json:"capacity" binding:"omitempty,gt=0"`
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=3,max=120"`
	Description     *string  `json:"description"`
	BasePrice       *float64 `json:"base_price" binding:"omitempty,gt=0"`
	DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,gt=0"`
	Capacity        *int     `json:"capacity" binding:"omitempty,gt=0"`
	Active          *bool    `json:"active"`
}

type ServiceListQuery struct {
	Type   string `form:"type"`
	Active *bool  `form:"active"`
	Page   int    `form:"page,default=1" binding:"omitempty,gt=0"`
	Limit  int    `form:"limit,default=20" binding:"omitempty,gt=0,lte=100"`
}
