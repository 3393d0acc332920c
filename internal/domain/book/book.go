package book

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("book not found")
	ErrISBNTaken = errors.New("isbn already registered")
)

type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	Year        *int      `json:"year,omitempty"`
	ISBN        string    `json:"isbn"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateBookRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Author      string `json:"author" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Year        *int   `json:"year" binding:"omitempty,min=0,max=2100"`
	ISBN        string `json:"isbn" binding:"required,min=1,max=20"`
	Available   *bool  `json:"available"`
}

// a full update payload, might switch to a patch which optionally provides means for partial updates.
type UpdateBookRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Author      string `json:"author" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Year        *int   `json:"year" binding:"omitempty,min=0,max=2100"`
	ISBN        string `json:"isbn" binding:"required,min=1,max=20"`
	Available   *bool  `json:"available"`
}

// IsAvailable resolves the optional availability flag, defaulting to true.
func (r CreateBookRequest) IsAvailable() bool {
	if r.Available == nil {
		return true
	}
	return *r.Available
}

func (r UpdateBookRequest) IsAvailable() bool {
	if r.Available == nil {
		return true
	}
	return *r.Available
}
