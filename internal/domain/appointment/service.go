package appointment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/medsched/medsched/internal/platform/events"
)

// Filter narrows a listing. Zero values (or "all") leave that side open.
type Filter struct {
	Status string
	Doctor string
	From   *time.Time
	To     *time.Time
}

// Service applies the domain rules in front of the repository. It is
// constructed once at startup and injected into the handlers; tests swap in
// an in-memory repository and a fake clock.
type Service struct {
	repo   Repository
	events events.Publisher
	now    func() time.Time
}

func NewService(repo Repository, publisher events.Publisher) *Service {
	return &Service{repo: repo, events: publisher, now: time.Now}
}

// List returns appointments newest-first, narrowed by the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]Appointment, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	appts = FilterByStatus(appts, f.Status)
	appts = FilterByDoctor(appts, f.Doctor)
	if f.From != nil || f.To != nil {
		appts = FilterByDateRange(appts, f.From, f.To)
	}
	return appts, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the payload, persists it, and announces the new row.
// A non-empty FieldErrors means the payload was rejected; err reports
// infrastructure failures only.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Appointment, FieldErrors, error) {
	a, ferr := ValidateCreate(req, s.now())
	if ferr != nil {
		return nil, ferr, nil
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, nil, err
	}
	s.publish(ctx, "created", a)
	return a, nil, nil
}

// Update applies a partial update. The status transition rule is enforced
// here against the currently persisted status, so API callers cannot move an
// appointment along an edge the lifecycle does not define.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Appointment, FieldErrors, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	upd, ferr := ValidateUpdate(req)
	if ferr != nil {
		return nil, ferr, nil
	}
	if upd.Status != nil && !CanTransition(existing.Status, *upd.Status) {
		ferr = FieldErrors{}
		ferr.add("status", transitionMessage(existing.Status, *upd.Status))
		return nil, ferr, nil
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, "updated", updated)
	return updated, nil, nil
}

// Delete removes the appointment permanently. ErrNotFound when no row
// matched.
func (s *Service) Delete(ctx context.Context, id int64) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.publish(ctx, "deleted", &Appointment{ID: id})
	return nil
}

// Stats computes the dashboard tally over all appointments.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Tally(appts, s.now()), nil
}

// UpcomingList returns future, still-live appointments ascending.
func (s *Service) UpcomingList(ctx context.Context) ([]Appointment, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Upcoming(appts, s.now()), nil
}

// Doctors returns the distinct doctor names in first-appearance order.
func (s *Service) Doctors(ctx context.Context) ([]string, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return UniqueDoctors(appts), nil
}

// Specialties returns the distinct specialties in first-appearance order.
func (s *Service) Specialties(ctx context.Context) ([]string, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return UniqueSpecialties(appts), nil
}

// Availability reports whether the doctor is free for the proposed slot.
func (s *Service) Availability(ctx context.Context, doctor string, start time.Time, duration time.Duration) (bool, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return false, err
	}
	return IsSlotAvailable(appts, start, doctor, duration), nil
}

func (s *Service) publish(ctx context.Context, eventType string, a *Appointment) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	_ = s.events.Publish(ctx, events.Event{
		Type:         eventType,
		Topic:        events.TopicAppointments,
		ResourceType: "Appointment",
		ResourceID:   a.ID,
		Timestamp:    s.now(),
		Data:         data,
	})
}

func transitionMessage(from, to string) string {
	if from == StatusCompleted || from == StatusCancelled {
		return "Status cannot change once " + from
	}
	return "Status cannot move from " + from + " to " + to
}
