package models

// DepartmentDetail is a department with the clubs it runs.
type DepartmentDetail struct {
	Department
	Clubs []Club `json:"clubs"`
}

// ClubRoster is a club with its memberships and member profiles.
type ClubRoster struct {
	Club
	Memberships []StudentClub `json:"memberships"`
	Members     []Student     `json:"members"`
}

// EventSummary is an event with its registration count.
type EventSummary struct {
	Event
	Registrations int `json:"registrations"`
}

// EventDetail is an event with its participating clubs and registrations.
type EventDetail struct {
	Event
	Clubs       []EventClub       `json:"clubs"`
	Attendances []EventAttendance `json:"attendances"`
}

// CatalogStatus reports applied migrations and row counts per table.
type CatalogStatus struct {
	Migrations []AppliedMigration `json:"migrations"`
	Tables     map[string]int     `json:"tables"`
}
