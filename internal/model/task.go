package model

import "time"

// Task represents a single to-do item scoped to one user and one calendar day
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Day       Day       `json:"day"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTask creates a task for the given day with defaults
func NewTask(id, userID string, day Day, text string, position int) Task {
	return Task{
		ID:        id,
		UserID:    userID,
		Day:       day,
		Text:      text,
		Done:      false,
		Position:  position,
		CreatedAt: time.Now(),
	}
}
