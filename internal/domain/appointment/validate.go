package appointment

import (
	"fmt"
	"strings"
	"time"
)

// FieldErrors maps a wire field name to the human-readable messages recorded
// against it. A nil or empty map means the value passed validation.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Layouts accepted for appointmentDate, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// ValidateCreate checks a creation payload against the entity rules and, on
// success, returns the normalized appointment (no ID; the store assigns one).
// On failure the returned FieldErrors is non-empty and the appointment is nil.
func ValidateCreate(req CreateRequest, now time.Time) (*Appointment, FieldErrors) {
	errs := FieldErrors{}

	if strings.TrimSpace(req.PatientName) == "" {
		errs.add("patientName", "Patient name is required")
	}
	if strings.TrimSpace(req.DoctorName) == "" {
		errs.add("doctorName", "Doctor name is required")
	}
	if strings.TrimSpace(req.Specialty) == "" {
		errs.add("specialty", "Specialty is required")
	}

	var date time.Time
	if req.AppointmentDate == "" {
		errs.add("appointmentDate", "Appointment date is required")
	} else if parsed, err := parseDate(req.AppointmentDate); err != nil {
		errs.add("appointmentDate", "Appointment date must be a valid timestamp")
	} else if !parsed.After(now) {
		errs.add("appointmentDate", "Appointment date must be in the future")
	} else {
		date = parsed
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	} else if !ValidStatus(status) {
		errs.add("status", statusMessage(status))
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &Appointment{
		PatientName:     req.PatientName,
		DoctorName:      req.DoctorName,
		Specialty:       req.Specialty,
		AppointmentDate: date,
		Status:          status,
		Notes:           req.Notes,
	}, nil
}

// ValidateUpdate checks a partial payload. Present fields follow the creation
// rules except that appointmentDate is not required to be in the future; the
// source system only guards the date at booking time. A zero-field update is
// valid.
func ValidateUpdate(req UpdateRequest) (Update, FieldErrors) {
	errs := FieldErrors{}
	upd := Update{Notes: req.Notes}

	if req.PatientName != nil {
		if strings.TrimSpace(*req.PatientName) == "" {
			errs.add("patientName", "Patient name must not be empty")
		} else {
			upd.PatientName = req.PatientName
		}
	}
	if req.DoctorName != nil {
		if strings.TrimSpace(*req.DoctorName) == "" {
			errs.add("doctorName", "Doctor name must not be empty")
		} else {
			upd.DoctorName = req.DoctorName
		}
	}
	if req.Specialty != nil {
		if strings.TrimSpace(*req.Specialty) == "" {
			errs.add("specialty", "Specialty must not be empty")
		} else {
			upd.Specialty = req.Specialty
		}
	}
	if req.AppointmentDate != nil {
		if parsed, err := parseDate(*req.AppointmentDate); err != nil {
			errs.add("appointmentDate", "Appointment date must be a valid timestamp")
		} else {
			upd.AppointmentDate = &parsed
		}
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			errs.add("status", statusMessage(*req.Status))
		} else {
			upd.Status = req.Status
		}
	}

	if len(errs) > 0 {
		return Update{}, errs
	}
	return upd, nil
}

func statusMessage(got string) string {
	return fmt.Sprintf("Status must be one of %s; got %q", strings.Join(Statuses, ", "), got)
}
