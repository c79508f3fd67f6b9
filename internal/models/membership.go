package models

import "time"

// JoinStatus is the outcome of a membership application.
type JoinStatus string

const (
	JoinStatusApplied    JoinStatus = "applied"
	JoinStatusWaitlisted JoinStatus = "waitlisted"
)

// JoinResult is returned to the applicant; Message is the notification shown to them.
type JoinResult struct {
	ClubID      int64      `json:"club_id"`
	ClubName    string     `json:"club_name"`
	Status      JoinStatus `json:"status"`
	Message     string     `json:"message"`
	RequestedAt time.Time  `json:"requested_at"`
}
