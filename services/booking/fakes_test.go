package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"ambulink/database"
	"ambulink/models"
)

type memBookings struct {
	mu    sync.Mutex
	items map[string]*models.Booking
	// afterFind runs after every FindByID, outside the lock.
	afterFind func()
}

func newMemBookings() *memBookings {
	return &memBookings{items: make(map[string]*models.Booking)}
}

func (m *memBookings) Create(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[b.ID] = b.Clone()
	return nil
}

func (m *memBookings) FindByID(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	b, ok := m.items[id]
	var out *models.Booking
	if ok {
		out = b.Clone()
	}
	m.mu.Unlock()
	if m.afterFind != nil {
		m.afterFind()
	}
	if !ok {
		return nil, database.ErrNotFound
	}
	return out, nil
}

func (m *memBookings) FindByFilter(_ context.Context, f models.BookingFilter) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.items {
		if f.PatientID != "" && b.PatientID != f.PatientID {
			continue
		}
		if f.DriverID != "" && b.DriverID != f.DriverID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, *b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memBookings) FindActiveByDriver(_ context.Context, driverID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.items {
		if b.DriverID == driverID && b.Status.Active() {
			return b.Clone(), nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memBookings) Save(_ context.Context, b *models.Booking, expected models.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[b.ID]
	if !ok || cur.Status != expected || cur.Version != b.Version {
		return database.ErrVersionConflict
	}
	stored := b.Clone()
	stored.Version++
	m.items[b.ID] = stored
	b.Version++
	return nil
}

func (m *memBookings) SetFeedback(_ context.Context, id string, fb models.Feedback) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[id]
	if !ok || cur.Status != models.StatusCompleted || cur.Feedback != nil {
		return nil, database.ErrVersionConflict
	}
	cur.Feedback = &fb
	cur.Version++
	return cur.Clone(), nil
}

func (m *memBookings) get(id string) *models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Clone()
}

type memUsers struct {
	mu    sync.Mutex
	items map[string]*models.User
	// beforeClaim runs before ClaimDriver checks availability.
	beforeClaim func(id string)
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{items: make(map[string]*models.User)}
	for _, u := range users {
		u := u
		m.items[u.ID] = &u
	}
	return m
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memUsers) FindByRole(_ context.Context, role models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.items {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memUsers) FindAvailableDrivers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.items {
		if u.Role == models.RoleDriver && u.Available {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	cp := *u
	m.items[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdateAvailability(_ context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return database.ErrNotFound
	}
	u.Available = available
	return nil
}

func (m *memUsers) MarkAvailable(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok || u.Role != models.RoleDriver || u.ActiveBookingID != "" {
		return database.ErrVersionConflict
	}
	u.Available = true
	return nil
}

func (m *memUsers) ClaimDriver(_ context.Context, id, bookingID string) error {
	if m.beforeClaim != nil {
		m.beforeClaim(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok || u.Role != models.RoleDriver || !u.Available {
		return database.ErrVersionConflict
	}
	u.Available = false
	u.ActiveBookingID = bookingID
	return nil
}

func (m *memUsers) ReleaseDriver(_ context.Context, id, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok || u.ActiveBookingID != bookingID {
		return database.ErrVersionConflict
	}
	u.Available = true
	u.ActiveBookingID = ""
	return nil
}

func (m *memUsers) UpdateLocation(_ context.Context, id string, at models.Coordinates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return database.ErrNotFound
	}
	u.Location = &at
	return nil
}

func (m *memUsers) UpdateRating(_ context.Context, id string, rating int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	u.Rating = (u.Rating*float64(u.TotalRides) + float64(rating)) / float64(u.TotalRides+1)
	u.TotalRides++
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateFCMToken(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return database.ErrNotFound
	}
	u.FCMToken = token
	return nil
}

func (m *memUsers) get(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.items[id]
}

type sentNotification struct {
	UserIDs []string
	Role    models.Role
	Kind    models.NotificationKind
	Title   string
}

// recordingNotifier captures fan-out calls.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) Create(_ context.Context, userID string, kind models.NotificationKind, title, _, _ string) (*models.Notification, error) {
	r.record(sentNotification{UserIDs: []string{userID}, Kind: kind, Title: title})
	return &models.Notification{UserID: userID, Kind: kind, Title: title}, nil
}

func (r *recordingNotifier) NotifyUsers(_ context.Context, userIDs []string, kind models.NotificationKind, title, _, _ string) {
	r.record(sentNotification{UserIDs: append([]string(nil), userIDs...), Kind: kind, Title: title})
}

func (r *recordingNotifier) NotifyRole(_ context.Context, role models.Role, kind models.NotificationKind, title, _, _ string) {
	r.record(sentNotification{Role: role, Kind: kind, Title: title})
}

func (r *recordingNotifier) ListForUser(context.Context, models.Actor, int64) ([]models.Notification, error) {
	return nil, nil
}

func (r *recordingNotifier) MarkRead(context.Context, models.Actor, string) (*models.Notification, error) {
	return nil, nil
}

func (r *recordingNotifier) record(n sentNotification) {
	r.mu.Lock()
	r.sent = append(r.sent, n)
	r.mu.Unlock()
}

// to returns the notifications addressed to userID directly.
func (r *recordingNotifier) to(userID string) []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotification
	for _, n := range r.sent {
		for _, id := range n.UserIDs {
			if id == userID {
				out = append(out, n)
			}
		}
	}
	return out
}

func (r *recordingNotifier) toRole(role models.Role) []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotification
	for _, n := range r.sent {
		if n.Role == role {
			out = append(out, n)
		}
	}
	return out
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingBroadcaster) Publish(_ context.Context, e models.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *recordingBroadcaster) named(name string) []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type fixedHospitals struct {
	hospital *models.Hospital
}

func (f fixedHospitals) Nearest(context.Context, models.Coordinates, float64) (*models.Hospital, error) {
	if f.hospital == nil {
		return nil, database.ErrNotFound
	}
	h := *f.hospital
	return &h, nil
}

type recordingEscalator struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingEscalator) ScheduleEscalation(_ context.Context, id string) error {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
	return nil
}

var (
	testNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	patient      = models.Actor{ID: "p1", Role: models.RolePatient, Name: "Jane Doe"}
	otherPatient = models.Actor{ID: "p2", Role: models.RolePatient, Name: "John Roe"}
	admin        = models.Actor{ID: "a1", Role: models.RoleAdmin, Name: "Dispatch"}
	driverOne    = models.Actor{ID: "d1", Role: models.RoleDriver, Name: "Dan"}
	driverTwo    = models.Actor{ID: "d2", Role: models.RoleDriver, Name: "Dora"}
)

type fixture struct {
	svc         *DefaultBookingService
	bookings    *memBookings
	users       *memUsers
	notifier    *recordingNotifier
	broadcaster *recordingBroadcaster
	escalator   *recordingEscalator
}

func newFixture() *fixture {
	users := newMemUsers(
		models.User{ID: patient.ID, Role: models.RolePatient, Name: patient.Name, Phone: "555-0100"},
		models.User{ID: otherPatient.ID, Role: models.RolePatient, Name: otherPatient.Name, Phone: "555-0101"},
		models.User{ID: admin.ID, Role: models.RoleAdmin, Name: admin.Name},
		models.User{ID: driverOne.ID, Role: models.RoleDriver, Name: driverOne.Name, Available: true,
			Location: &models.Coordinates{Lat: 40.7128, Lng: -74.0060}},
		models.User{ID: driverTwo.ID, Role: models.RoleDriver, Name: driverTwo.Name, Available: true},
	)
	f := &fixture{
		bookings:    newMemBookings(),
		users:       users,
		notifier:    &recordingNotifier{},
		broadcaster: &recordingBroadcaster{},
		escalator:   &recordingEscalator{},
	}
	f.svc = &DefaultBookingService{
		Bookings:    f.bookings,
		Users:       f.users,
		Notifier:    f.notifier,
		Broadcaster: f.broadcaster,
		Escalator:   f.escalator,
		Now:         func() time.Time { return testNow },
	}
	return f
}

func validInput() models.BookingInput {
	return models.BookingInput{
		PatientName:         "Jane Doe",
		PatientPhone:        "555-0100",
		PickupAddress:       "1 Main St",
		PickupLocation:      models.Coordinates{Lat: 40.7128, Lng: -74.0060},
		DestinationAddress:  "City Hospital",
		DestinationLocation: models.Coordinates{Lat: 40.7580, Lng: -73.9855},
		MedicalCondition:    "chest pain",
		Priority:            models.PriorityMedium,
		Route:               &models.Route{DistanceKm: 10},
	}
}

// pendingBooking creates a booking for patient through the service.
func (f *fixture) pendingBooking(t testingT) *models.Booking {
	b, err := f.svc.CreateBooking(context.Background(), patient, validInput())
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

// advance walks a booking through the given statuses as actor.
func (f *fixture) advance(t testingT, id string, actor models.Actor, statuses ...models.BookingStatus) *models.Booking {
	var b *models.Booking
	for _, s := range statuses {
		var err error
		b, err = f.svc.UpdateStatus(context.Background(), actor, id, s, "")
		if err != nil {
			t.Fatalf("move to %s: %v", s, err)
		}
	}
	return b
}

type testingT interface {
	Fatalf(format string, args ...interface{})
}
