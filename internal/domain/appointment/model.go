package appointment

import (
	"encoding/json"
	"time"
)

// Status values an appointment moves through during its lifecycle.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Statuses lists every status the store will accept, in lifecycle order.
var Statuses = []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// ValidStatus reports whether s is one of the four lifecycle statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Appointment maps to the appointments table. Wire names are camelCase to
// match the browser client; column names are snake_case.
type Appointment struct {
	ID              int64     `db:"id" json:"id"`
	PatientName     string    `db:"patient_name" json:"patientName"`
	DoctorName      string    `db:"doctor_name" json:"doctorName"`
	Specialty       string    `db:"specialty" json:"specialty"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointmentDate"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes"`
}

// CreateRequest is the POST body. AppointmentDate stays a string until
// validation so that an unparseable value becomes a field error rather than
// a bind failure.
type CreateRequest struct {
	PatientName     string  `json:"patientName"`
	DoctorName      string  `json:"doctorName"`
	Specialty       string  `json:"specialty"`
	AppointmentDate string  `json:"appointmentDate"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes"`
}

// UpdateRequest is the PATCH body. Every field is optional; Notes
// distinguishes "absent" from an explicit null, which clears the column.
type UpdateRequest struct {
	PatientName     *string        `json:"patientName"`
	DoctorName      *string        `json:"doctorName"`
	Specialty       *string        `json:"specialty"`
	AppointmentDate *string        `json:"appointmentDate"`
	Status          *string        `json:"status"`
	Notes           OptionalString `json:"notes"`
}

// Update is a validated partial update ready for the repository. Nil fields
// are left untouched; Notes is applied only when Set.
type Update struct {
	PatientName     *string
	DoctorName      *string
	Specialty       *string
	AppointmentDate *time.Time
	Status          *string
	Notes           OptionalString
}

// Empty reports whether the update carries no fields. A zero-field PATCH is
// a permitted no-op.
func (u Update) Empty() bool {
	return u.PatientName == nil && u.DoctorName == nil && u.Specialty == nil &&
		u.AppointmentDate == nil && u.Status == nil && !u.Notes.Set
}

// OptionalString is a tri-state JSON string: absent, null, or a value.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
