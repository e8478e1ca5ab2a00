package models

import "time"

// LeaderboardEntry is one community's result in one sport.
// (community_id, sport_id) is unique.
type LeaderboardEntry struct {
	ID          int       `json:"id" db:"id"`
	CommunityID int       `json:"community_id" db:"community_id"`
	SportID     int       `json:"sport_id" db:"sport_id"`
	Score       int       `json:"score" db:"score"`
	Position    *int      `json:"position,omitempty" db:"position"`
	Medal       *string   `json:"medal,omitempty" db:"medal"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Community *Community `json:"community,omitempty" db:"-"`
	Sport     *Sport     `json:"sport,omitempty" db:"-"`
}

// OverallStanding is derived at read time: total score per community
// across every sport entry, ranked descending.
type OverallStanding struct {
	CommunityID   int    `json:"community_id" db:"community_id"`
	CommunityName string `json:"community_name" db:"community_name"`
	TotalScore    int    `json:"total_score" db:"total_score"`
	Rank          int    `json:"rank" db:"-"`
}
