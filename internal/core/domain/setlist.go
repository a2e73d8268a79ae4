package domain

import (
	"time"

	"github.com/google/uuid"
)

type Setlist struct {
	ID        uuid.UUID `json:"id"`
	ShowID    string    `json:"show_id"`
	Songs     []Song    `json:"songs"`
	CreatedAt time.Time `json:"created_at"`
}

type Song struct {
	ID             uuid.UUID `json:"id"`
	SetlistID      uuid.UUID `json:"setlist_id"`
	DisplayName    string    `json:"display_name"`
	SourceRef      string    `json:"source_ref,omitempty"`
	IsFanSuggested bool      `json:"is_fan_suggested"`
	CreatedAt      time.Time `json:"created_at"`
}
