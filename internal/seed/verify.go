package seed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/business-school/campus-api/pkg/errors"
)

// Severity classifies a verifier finding.
type Severity string

const (
	// SeverityError marks rows the relational store would reject.
	SeverityError Severity = "error"
	// SeverityWarning marks rows the store accepts but that look wrong.
	SeverityWarning Severity = "warning"
)

// Finding is one problem found in a dataset.
type Finding struct {
	Severity Severity `json:"severity"`
	Table    string   `json:"table"`
	Key      string   `json:"key"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s[%s]: %s", f.Severity, f.Table, f.Key, f.Message)
}

// Report collects the findings of a verification pass.
type Report struct {
	Findings []Finding `json:"findings"`
}

// Errors returns findings with error severity.
func (r Report) Errors() []Finding {
	return r.filter(SeverityError)
}

// Warnings returns findings with warning severity.
func (r Report) Warnings() []Finding {
	return r.filter(SeverityWarning)
}

func (r Report) filter(severity Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

// Err returns an INVALID_SEED error when the report has errors, or warnings in strict mode.
func (r Report) Err(strict bool) error {
	blocking := r.Errors()
	if strict {
		blocking = append(blocking, r.Warnings()...)
	}
	if len(blocking) == 0 {
		return nil
	}
	lines := make([]string, 0, len(blocking))
	for _, f := range blocking {
		lines = append(lines, f.String())
	}
	return appErrors.CloneWrap(appErrors.ErrInvalidSeed, fmt.Errorf("%s", strings.Join(lines, "; ")),
		fmt.Sprintf("seed data has %d blocking finding(s)", len(blocking)))
}

type verifier struct {
	validate *validator.Validate
	findings []Finding
}

func (v *verifier) add(severity Severity, table, key, format string, args ...interface{}) {
	v.findings = append(v.findings, Finding{Severity: severity, Table: table, Key: key, Message: fmt.Sprintf(format, args...)})
}

func (v *verifier) check(table, key string, row interface{}) {
	err := v.validate.Struct(row)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.add(SeverityError, table, key, "%v", err)
		return
	}
	for _, fe := range verrs {
		v.add(SeverityError, table, key, "field %s fails %q", fe.Field(), fe.Tag())
	}
}

func idKey(id int) string {
	return fmt.Sprintf("id=%d", id)
}

func pairKey(a, b int) string {
	return fmt.Sprintf("%d,%d", a, b)
}

// Verify statically checks a dataset: unique ids, field constraints,
// foreign keys resolving inside the dataset and unique composite keys are
// errors; lax-but-suspicious rows (event ending before it starts,
// attendance flags disagreeing with timestamps, events over capacity) are
// warnings.
func Verify(d Dataset, validate *validator.Validate) Report {
	if validate == nil {
		validate = validator.New()
	}
	v := &verifier{validate: validate}

	departments := make(map[int]struct{}, len(d.Departments))
	for _, row := range d.Departments {
		if _, dup := departments[row.ID]; dup {
			v.add(SeverityError, TableDepartments, idKey(row.ID), "duplicate id")
		}
		departments[row.ID] = struct{}{}
		v.check(TableDepartments, idKey(row.ID), row)
	}

	clubs := make(map[int]struct{}, len(d.Clubs))
	for _, row := range d.Clubs {
		if _, dup := clubs[row.ID]; dup {
			v.add(SeverityError, TableClubs, idKey(row.ID), "duplicate id")
		}
		clubs[row.ID] = struct{}{}
		v.check(TableClubs, idKey(row.ID), row)
		if _, ok := departments[row.DepartmentID]; !ok {
			v.add(SeverityError, TableClubs, idKey(row.ID), "department_id %d does not exist", row.DepartmentID)
		}
	}

	students := make(map[int]struct{}, len(d.Students))
	for _, row := range d.Students {
		if _, dup := students[row.ID]; dup {
			v.add(SeverityError, TableStudents, idKey(row.ID), "duplicate id")
		}
		students[row.ID] = struct{}{}
		v.check(TableStudents, idKey(row.ID), row)
	}

	events := make(map[int]struct{}, len(d.Events))
	capacity := make(map[int]int, len(d.Events))
	for _, row := range d.Events {
		if _, dup := events[row.ID]; dup {
			v.add(SeverityError, TableEvents, idKey(row.ID), "duplicate id")
		}
		events[row.ID] = struct{}{}
		v.check(TableEvents, idKey(row.ID), row)
		if row.DepartmentID != nil {
			if _, ok := departments[*row.DepartmentID]; !ok {
				v.add(SeverityError, TableEvents, idKey(row.ID), "department_id %d does not exist", *row.DepartmentID)
			}
		}
		if row.EndDate.Before(row.StartDate) {
			v.add(SeverityWarning, TableEvents, idKey(row.ID), "end_date %s is before start_date %s",
				row.EndDate.Format("2006-01-02 15:04"), row.StartDate.Format("2006-01-02 15:04"))
		}
		if row.Capacity != nil {
			capacity[row.ID] = *row.Capacity
		}
	}

	memberships := make(map[[2]int]struct{}, len(d.StudentClubs))
	for _, row := range d.StudentClubs {
		key := pairKey(row.StudentID, row.ClubID)
		if _, dup := memberships[row.Key()]; dup {
			v.add(SeverityError, TableStudentClubs, key, "duplicate (student_id, club_id)")
		}
		memberships[row.Key()] = struct{}{}
		v.check(TableStudentClubs, key, row)
		if _, ok := students[row.StudentID]; !ok {
			v.add(SeverityError, TableStudentClubs, key, "student_id %d does not exist", row.StudentID)
		}
		if _, ok := clubs[row.ClubID]; !ok {
			v.add(SeverityError, TableStudentClubs, key, "club_id %d does not exist", row.ClubID)
		}
	}

	registrations := make(map[[2]int]struct{}, len(d.EventAttendances))
	perEvent := make(map[int]int)
	for _, row := range d.EventAttendances {
		key := pairKey(row.EventID, row.StudentID)
		if _, dup := registrations[row.Key()]; dup {
			v.add(SeverityError, TableEventAttendances, key, "duplicate (event_id, student_id)")
		}
		registrations[row.Key()] = struct{}{}
		v.check(TableEventAttendances, key, row)
		if _, ok := events[row.EventID]; !ok {
			v.add(SeverityError, TableEventAttendances, key, "event_id %d does not exist", row.EventID)
		}
		if _, ok := students[row.StudentID]; !ok {
			v.add(SeverityError, TableEventAttendances, key, "student_id %d does not exist", row.StudentID)
		}
		switch {
		case row.HasAttended && row.AttendedAt == nil:
			v.add(SeverityWarning, TableEventAttendances, key, "has_attended is set but attended_at is empty")
		case !row.HasAttended && row.AttendedAt != nil:
			v.add(SeverityWarning, TableEventAttendances, key, "attended_at is set but has_attended is false")
		}
		if !row.HasAttended && row.PointsAwarded > 0 {
			v.add(SeverityWarning, TableEventAttendances, key, "%d points awarded without attendance", row.PointsAwarded)
		}
		perEvent[row.EventID]++
	}
	for _, row := range d.Events {
		if limit, ok := capacity[row.ID]; ok && perEvent[row.ID] > limit {
			v.add(SeverityWarning, TableEvents, idKey(row.ID), "%d registrations exceed capacity %d", perEvent[row.ID], limit)
		}
	}

	links := make(map[[2]int]struct{}, len(d.EventClubs))
	for _, row := range d.EventClubs {
		key := pairKey(row.EventID, row.ClubID)
		if _, dup := links[row.Key()]; dup {
			v.add(SeverityError, TableEventClubs, key, "duplicate (event_id, club_id)")
		}
		links[row.Key()] = struct{}{}
		v.check(TableEventClubs, key, row)
		if _, ok := events[row.EventID]; !ok {
			v.add(SeverityError, TableEventClubs, key, "event_id %d does not exist", row.EventID)
		}
		if _, ok := clubs[row.ClubID]; !ok {
			v.add(SeverityError, TableEventClubs, key, "club_id %d does not exist", row.ClubID)
		}
	}

	return Report{Findings: v.findings}
}
