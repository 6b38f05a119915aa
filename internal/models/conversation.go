package models

import "time"

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// ConversationTurn is one line of recent dialogue. The store keeps only the
// most recent fixed number per user.
type ConversationTurn struct {
	UserID    int64     `json:"user_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// DayTotals is one day's aggregated nutrition plus the food names logged
// that day, for range summaries.
type DayTotals struct {
	Day       time.Time `json:"day"`
	Totals    Macros    `json:"totals"`
	FoodNames []string  `json:"food_names"`
}
