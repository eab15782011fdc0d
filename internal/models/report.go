package models

// PointsStanding is a student's accumulated points across clubs and attended events.
type PointsStanding struct {
	StudentID   int          `db:"student_id" json:"student_id"`
	FirstName   string       `db:"first_name" json:"first_name"`
	LastName    string       `db:"last_name" json:"last_name"`
	Level       StudentLevel `db:"level" json:"level"`
	ClubPoints  int          `db:"club_points" json:"club_points"`
	EventPoints int          `db:"event_points" json:"event_points"`
	TotalPoints int          `db:"total_points" json:"total_points"`
}
