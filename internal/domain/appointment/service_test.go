package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/medsched/medsched/internal/platform/events"
)

// -- Mock repository --

type mockRepo struct {
	mu     sync.Mutex
	appts  map[int64]*Appointment
	nextID int64
	// listErr forces List to fail, simulating a store outage.
	listErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[int64]*Appointment), nextID: 1}
}

func (m *mockRepo) List(_ context.Context) ([]Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]Appointment, 0, len(m.appts))
	for _, a := range m.appts {
		out = append(out, *a)
	}
	return SortByDate(out, "desc"), nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.nextID
	m.nextID++
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) Update(_ context.Context, id int64, upd Update) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.PatientName != nil {
		a.PatientName = *upd.PatientName
	}
	if upd.DoctorName != nil {
		a.DoctorName = *upd.DoctorName
	}
	if upd.Specialty != nil {
		a.Specialty = *upd.Specialty
	}
	if upd.AppointmentDate != nil {
		a.AppointmentDate = *upd.AppointmentDate
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.Notes.Set {
		a.Notes = upd.Notes.Value
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appts[id]; !ok {
		return false, nil
	}
	delete(m.appts, id)
	return true, nil
}

// recorder captures published events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newTestService() (*Service, *mockRepo, *recorder) {
	repo := newMockRepo()
	rec := &recorder{}
	svc := NewService(repo, rec)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local) }
	return svc, repo, rec
}

func validCreate() CreateRequest {
	return CreateRequest{
		PatientName:     "Alice Smith",
		DoctorName:      "Dr. Jones",
		Specialty:       "Cardiology",
		AppointmentDate: "2024-06-01T10:00:00",
	}
}

func TestService_Create(t *testing.T) {
	svc, _, rec := newTestService()

	a, ferr, err := svc.Create(context.Background(), validCreate())
	if err != nil || ferr != nil {
		t.Fatalf("create: err=%v ferr=%v", err, ferr)
	}
	if a.ID == 0 {
		t.Error("expected store-assigned id")
	}
	if a.Status != StatusPending {
		t.Errorf("expected pending, got %q", a.Status)
	}
	if got := rec.types(); len(got) != 1 || got[0] != "created" {
		t.Errorf("expected created event, got %v", got)
	}
}

func TestService_Create_ValidationRejected(t *testing.T) {
	svc, repo, rec := newTestService()

	_, ferr, err := svc.Create(context.Background(), CreateRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ferr == nil {
		t.Fatal("expected field errors")
	}
	if len(repo.appts) != 0 {
		t.Error("rejected payload must not be persisted")
	}
	if len(rec.types()) != 0 {
		t.Error("rejected payload must not publish an event")
	}
}

func TestService_Update_Transition(t *testing.T) {
	svc, _, _ := newTestService()
	a, _, _ := svc.Create(context.Background(), validCreate())

	// pending -> confirmed is a legal edge.
	confirmed := StatusConfirmed
	updated, ferr, err := svc.Update(context.Background(), a.ID, UpdateRequest{Status: &confirmed})
	if err != nil || ferr != nil {
		t.Fatalf("confirm: err=%v ferr=%v", err, ferr)
	}
	if updated.Status != StatusConfirmed {
		t.Errorf("got %q", updated.Status)
	}

	// confirmed -> pending is not.
	pending := StatusPending
	_, ferr, err = svc.Update(context.Background(), a.ID, UpdateRequest{Status: &pending})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ferr["status"]; !ok {
		t.Errorf("expected status field error, got %v", ferr)
	}
}

func TestService_Update_SkipsForbiddenEdge(t *testing.T) {
	svc, _, _ := newTestService()
	a, _, _ := svc.Create(context.Background(), validCreate())

	completed := StatusCompleted
	_, ferr, err := svc.Update(context.Background(), a.ID, UpdateRequest{Status: &completed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ferr == nil {
		t.Fatal("pending -> completed must be rejected")
	}

	got, err := svc.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusPending {
		t.Errorf("rejected transition must not persist, got %q", got.Status)
	}
}

func TestService_Update_PreservesOtherFields(t *testing.T) {
	svc, _, _ := newTestService()
	a, _, _ := svc.Create(context.Background(), validCreate())

	name := "Alice Jones"
	updated, ferr, err := svc.Update(context.Background(), a.ID, UpdateRequest{PatientName: &name})
	if err != nil || ferr != nil {
		t.Fatalf("update: err=%v ferr=%v", err, ferr)
	}
	if updated.PatientName != "Alice Jones" {
		t.Errorf("got %q", updated.PatientName)
	}
	if updated.DoctorName != a.DoctorName || updated.Specialty != a.Specialty {
		t.Error("untouched fields must survive a partial update")
	}
	if !updated.AppointmentDate.Equal(a.AppointmentDate) {
		t.Error("date must survive a partial update")
	}
}

func TestService_Update_ClearsNotes(t *testing.T) {
	svc, _, _ := newTestService()
	req := validCreate()
	notes := "bring previous records"
	req.Notes = &notes
	a, _, _ := svc.Create(context.Background(), req)

	updated, ferr, err := svc.Update(context.Background(), a.ID, UpdateRequest{Notes: OptionalString{Set: true}})
	if err != nil || ferr != nil {
		t.Fatalf("update: err=%v ferr=%v", err, ferr)
	}
	if updated.Notes != nil {
		t.Errorf("expected notes cleared, got %q", *updated.Notes)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	name := "Alice"
	_, _, err := svc.Update(context.Background(), 42, UpdateRequest{PatientName: &name})
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc, _, rec := newTestService()
	a, _, _ := svc.Create(context.Background(), validCreate())

	if err := svc.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), a.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), a.ID); err != ErrNotFound {
		t.Errorf("double delete should report ErrNotFound, got %v", err)
	}
	if got := rec.types(); len(got) != 2 || got[1] != "deleted" {
		t.Errorf("expected deleted event, got %v", got)
	}
}

func TestService_List_Filtered(t *testing.T) {
	svc, _, _ := newTestService()
	first := validCreate()
	svc.Create(context.Background(), first)
	second := validCreate()
	second.PatientName = "Bob"
	second.DoctorName = "Dr. Lee"
	second.AppointmentDate = "2024-06-02T10:00:00"
	svc.Create(context.Background(), second)

	appts, err := svc.List(context.Background(), Filter{Doctor: "Dr. Lee"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(appts) != 1 || appts[0].PatientName != "Bob" {
		t.Errorf("got %v", appts)
	}
}

func TestService_Stats(t *testing.T) {
	svc, _, _ := newTestService()
	svc.Create(context.Background(), validCreate())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 1 || stats.Pending != 1 {
		t.Errorf("got %+v", stats)
	}
}

func TestService_Availability(t *testing.T) {
	svc, _, _ := newTestService()
	svc.Create(context.Background(), validCreate())

	busy := time.Date(2024, 6, 1, 10, 30, 0, 0, time.Local)
	available, err := svc.Availability(context.Background(), "Dr. Jones", busy, time.Hour)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if available {
		t.Error("expected conflict with the booked slot")
	}

	free := time.Date(2024, 6, 1, 14, 0, 0, 0, time.Local)
	available, err = svc.Availability(context.Background(), "Dr. Jones", free, time.Hour)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !available {
		t.Error("expected free slot")
	}
}

func TestService_NilPublisher(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local) }

	if _, ferr, err := svc.Create(context.Background(), validCreate()); err != nil || ferr != nil {
		t.Fatalf("create without publisher: err=%v ferr=%v", err, ferr)
	}
}
