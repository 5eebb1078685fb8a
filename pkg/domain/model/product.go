package model

import "time"

// Product groups releases and features
type Product struct {
	Code        string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
