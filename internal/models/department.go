package models

// Department is an academic unit owning clubs and events.
type Department struct {
	ID             int    `db:"id" json:"id" validate:"required,gt=0"`
	Name           string `db:"name" json:"name" validate:"required,max=100"`
	PhoneNumber    string `db:"phone_number" json:"phone_number"`
	Email          string `db:"email" json:"email" validate:"omitempty,email"`
	OfficeLocation string `db:"office_location" json:"office_location"`
}
