package dto

import "time"

type ListingItemResponse struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Category    string   `json:"category,omitempty"`
	Company     string   `json:"company,omitempty"`
	Level       string   `json:"level,omitempty"`
	Experience  string   `json:"experience,omitempty"`
	Description string   `json:"description,omitempty"`
	SalaryText  string   `json:"salary_text"`
	Salary      int      `json:"salary"`
	Skills      []string `json:"skills"`
	City        string   `json:"city,omitempty"`
	WorkFormat  string   `json:"work_format,omitempty"`
	Education   string   `json:"education,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Age         string   `json:"age,omitempty"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	TelegramURL string   `json:"telegram_url,omitempty"`
}

type ListingMetaResponse struct {
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	Sort       string     `json:"sort"`
	LoadedAt   *time.Time `json:"loaded_at,omitempty"`
	LoadError  string     `json:"load_error,omitempty"`
}

type RefreshResponse struct {
	Kind      string     `json:"kind"`
	Count     int        `json:"count"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
	LoadError string     `json:"load_error,omitempty"`
}

type HealthResponse struct {
	App   string `json:"app"`
	Env   string `json:"env"`
	Redis string `json:"redis"`
}
