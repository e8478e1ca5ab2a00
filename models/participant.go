package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ParticipantStatus matches the participant_status ENUM in the participants table.
type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantAccepted ParticipantStatus = "accepted"
	ParticipantRejected ParticipantStatus = "rejected"
)

func (s ParticipantStatus) Valid() bool {
	return s == ParticipantPending || s == ParticipantAccepted || s == ParticipantRejected
}

// SportSelection is one entry of a participant's sport choice. Historical
// payloads stored selections as bare sport IDs; newer ones as
// {"sport_id": n, "notes": "..."} objects. Both decode into this one shape
// so nothing past the boundary ever branches on the form.
type SportSelection struct {
	SportID int     `json:"sport_id"`
	Notes   *string `json:"notes,omitempty"`
}

func (s *SportSelection) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		s.SportID = id
		s.Notes = nil
		return nil
	}
	type alias SportSelection
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("sport selection must be an id or an object: %w", err)
	}
	// Tolerate the camelCase key some clients sent.
	if a.SportID == 0 {
		var legacy struct {
			SportID int     `json:"sportId"`
			Notes   *string `json:"notes"`
		}
		if err := json.Unmarshal(data, &legacy); err == nil && legacy.SportID != 0 {
			a.SportID = legacy.SportID
			if a.Notes == nil {
				a.Notes = legacy.Notes
			}
		}
	}
	*s = SportSelection(a)
	return nil
}

// SportSelectionList is the jsonb snapshot stored in pending_sports.
type SportSelectionList []SportSelection

func (l *SportSelectionList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported source type for sport selection list: %T", src)
	}
	return json.Unmarshal(data, l)
}

func (l SportSelectionList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// SportIDs returns the selected IDs in list order.
func (l SportSelectionList) SportIDs() []int {
	ids := make([]int, 0, len(l))
	for _, sel := range l {
		ids = append(ids, sel.SportID)
	}
	return ids
}

// SameSports reports whether both lists select the same ID set,
// ignoring order and notes.
func (l SportSelectionList) SameSports(other SportSelectionList) bool {
	if len(l) != len(other) {
		return false
	}
	seen := make(map[int]int, len(l))
	for _, sel := range l {
		seen[sel.SportID]++
	}
	for _, sel := range other {
		seen[sel.SportID]--
		if seen[sel.SportID] < 0 {
			return false
		}
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}

// NextOfKin is stored as a jsonb column on the participant row.
type NextOfKin struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (n *NextOfKin) Scan(src interface{}) error {
	if src == nil {
		*n = NextOfKin{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported source type for next of kin: %T", src)
	}
	return json.Unmarshal(data, n)
}

func (n NextOfKin) Value() (driver.Value, error) {
	return json.Marshal(n)
}

type Participant struct {
	ID          int               `json:"id" db:"id"`
	FirstName   string            `json:"first_name" db:"first_name"`
	LastName    string            `json:"last_name" db:"last_name"`
	Gender      string            `json:"gender" db:"gender"`
	DateOfBirth time.Time         `json:"date_of_birth" db:"date_of_birth"`
	Email       string            `json:"email" db:"email"`
	Phone       string            `json:"phone" db:"phone"`
	CommunityID int               `json:"community_id" db:"community_id"`
	Status      ParticipantStatus `json:"status" db:"status"`
	NextOfKin   *NextOfKin        `json:"next_of_kin,omitempty" db:"next_of_kin"`
	TeamName    *string           `json:"team_name,omitempty" db:"team_name"`
	Notes       *string           `json:"notes,omitempty" db:"notes"`

	// Staged sports change awaiting re-review; applied on acceptance,
	// discarded on rejection.
	PendingSports SportSelectionList `json:"pending_sports,omitempty" db:"pending_sports"`

	UserID    *int      `json:"user_id,omitempty" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Sports    SportSelectionList `json:"sports" db:"-"`
	Community *Community         `json:"community,omitempty" db:"-"`

	// Populated on detail reads for convenience.
	SportDetails []Sport `json:"sport_details,omitempty" db:"-"`
}
