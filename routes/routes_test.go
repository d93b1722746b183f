package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ambulink/handlers"
	"ambulink/models"
	"ambulink/services/booking"
	"ambulink/services/user"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
)

type fakeBookings struct {
	booking.BookingService
	lastQuery booking.ListQuery
	getErr    error
}

func (f *fakeBookings) CreateBooking(_ context.Context, actor models.Actor, in models.BookingInput) (*models.Booking, error) {
	if in.MedicalCondition == "" {
		return nil, utils.NewValidationError("medicalCondition is required")
	}
	return &models.Booking{ID: "b1", PatientID: actor.ID, Status: models.StatusPending, Priority: in.Priority}, nil
}

func (f *fakeBookings) GetBooking(_ context.Context, _ models.Actor, id string) (*models.Booking, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Booking{ID: id}, nil
}

func (f *fakeBookings) ListBookings(_ context.Context, _ models.Actor, q booking.ListQuery) ([]models.Booking, error) {
	f.lastQuery = q
	return []models.Booking{}, nil
}

func (f *fakeBookings) AssignDriver(_ context.Context, _ models.Actor, id, driverID string) (*models.Booking, error) {
	return &models.Booking{ID: id, DriverID: driverID, Status: models.StatusAssigned}, nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, _ models.Actor, id string, status models.BookingStatus, _ string) (*models.Booking, error) {
	if status == models.StatusCompleted {
		return nil, utils.NewInvalidTransitionError("cannot move from pending to completed")
	}
	return &models.Booking{ID: id, Status: status}, nil
}

func (f *fakeBookings) CreateEmergencyAlert(_ context.Context, actor models.Actor, at models.Coordinates, _ string) (*models.Booking, error) {
	return &models.Booking{ID: "e1", PatientID: actor.ID, Emergency: true, Pickup: models.Place{Location: at}}, nil
}

type fakeUsers struct {
	user.UserService
	center models.Coordinates
}

func (f *fakeUsers) NearbyDrivers(_ context.Context, _ models.Actor, center models.Coordinates, _ float64) ([]models.NearbyDriver, error) {
	f.center = center
	return []models.NearbyDriver{}, nil
}

func (f *fakeUsers) SetAvailability(_ context.Context, actor models.Actor, available bool) (*models.User, error) {
	return &models.User{ID: actor.ID, Role: actor.Role, Available: available}, nil
}

func unused(c *gin.Context) { c.Status(http.StatusNotImplemented) }

func newTestRouter(bookings *fakeBookings, users *fakeUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	bh := handlers.NewBookingHandler(bookings)
	dh := handlers.NewDriverHandler(users)
	hb := &handlers.HandlerBundle{
		RegisterHandler:       unused,
		LoginHandler:          unused,
		UpdateFCMTokenHandler: unused,

		CreateBookingHandler:  bh.CreateBookingHandler,
		ListBookingsHandler:   bh.ListBookingsHandler,
		GetBookingHandler:     bh.GetBookingHandler,
		UpdateStatusHandler:   bh.UpdateStatusHandler,
		AssignDriverHandler:   bh.AssignDriverHandler,
		SubmitFeedbackHandler: bh.SubmitFeedbackHandler,
		EmergencyAlertHandler: bh.EmergencyAlertHandler,

		ListDriversHandler:     unused,
		NearbyDriversHandler:   dh.NearbyDriversHandler,
		UpdateLocationHandler:  unused,
		SetAvailabilityHandler: dh.SetAvailabilityHandler,

		ListHospitalsHandler:     unused,
		CreateHospitalHandler:    unused,
		ListNotificationsHandler: unused,
		MarkReadHandler:          unused,
		DashboardHandler:         unused,
		WebsocketHandler:         unused,
	}
	r := gin.New()
	r.Use(utils.ErrorHandler())
	RegisterRoutes(r, hb)
	return r
}

func tokenFor(t *testing.T, id string, role models.Role) string {
	t.Helper()
	token, err := utils.GenerateToken(&models.User{ID: id, Role: role}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func request(r http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoleGating(t *testing.T) {
	r := newTestRouter(&fakeBookings{}, &fakeUsers{})
	patient := tokenFor(t, "p1", models.RolePatient)
	driver := tokenFor(t, "d1", models.RoleDriver)
	admin := tokenFor(t, "a1", models.RoleAdmin)
	bookingBody := `{"medicalCondition":"chest pain","priority":"high"}`

	cases := []struct {
		name   string
		method string
		target string
		token  string
		body   string
		want   int
	}{
		{"anonymous booking", http.MethodPost, "/api/bookings", "", bookingBody, http.StatusUnauthorized},
		{"patient books", http.MethodPost, "/api/bookings", patient, bookingBody, http.StatusCreated},
		{"driver cannot book", http.MethodPost, "/api/bookings", driver, bookingBody, http.StatusForbidden},
		{"admin assigns", http.MethodPatch, "/api/bookings/b1/assign", admin, `{"driverId":"d1"}`, http.StatusOK},
		{"patient cannot assign", http.MethodPatch, "/api/bookings/b1/assign", patient, `{"driverId":"d1"}`, http.StatusForbidden},
		{"driver cannot rate", http.MethodPost, "/api/bookings/b1/feedback", driver, `{"rating":5}`, http.StatusForbidden},
		{"patient raises alert", http.MethodPost, "/api/emergency-alert", patient, `{"location":{"lat":1,"lng":2}}`, http.StatusCreated},
		{"admin cannot raise alert", http.MethodPost, "/api/emergency-alert", admin, `{"location":{"lat":1,"lng":2}}`, http.StatusForbidden},
		{"admin searches drivers", http.MethodGet, "/api/drivers/nearby?lat=40.7&lng=-74", admin, "", http.StatusOK},
		{"patient cannot search drivers", http.MethodGet, "/api/drivers/nearby?lat=40.7&lng=-74", patient, "", http.StatusForbidden},
		{"driver goes off duty", http.MethodPatch, "/api/drivers/availability", driver, `{"available":false}`, http.StatusOK},
		{"admin has no availability", http.MethodPatch, "/api/drivers/availability", admin, `{"available":false}`, http.StatusForbidden},
		{"dashboard is admin only", http.MethodGet, "/api/analytics/dashboard", driver, "", http.StatusForbidden},
		{"health is public", http.MethodGet, "/health", "", "", http.StatusOK},
		{"metrics are public", http.MethodGet, "/metrics", "", "", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := request(r, c.method, c.target, c.token, c.body)
			if w.Code != c.want {
				t.Fatalf("got %d, want %d: %s", w.Code, c.want, w.Body.String())
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	bookings := &fakeBookings{}
	r := newTestRouter(bookings, &fakeUsers{})
	patient := tokenFor(t, "p1", models.RolePatient)

	cases := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"validation", http.MethodPost, "/api/bookings", `{"priority":"high"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/bookings", `{`, http.StatusBadRequest},
		{"invalid transition", http.MethodPatch, "/api/bookings/b1/status", `{"status":"completed"}`, http.StatusConflict},
		{"bad limit", http.MethodGet, "/api/bookings?limit=many", "", http.StatusBadRequest},
	}
	for _, c := range cases {
		if w := request(r, c.method, c.target, patient, c.body); w.Code != c.want {
			t.Errorf("%s: got %d, want %d", c.name, w.Code, c.want)
		}
	}

	bookings.getErr = utils.NewNotFoundError("booking not found")
	w := request(r, http.MethodGet, "/api/bookings/missing", patient, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body utils.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Message != "booking not found" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestQueryParametersReachServices(t *testing.T) {
	bookings := &fakeBookings{}
	users := &fakeUsers{}
	r := newTestRouter(bookings, users)
	admin := tokenFor(t, "a1", models.RoleAdmin)

	if w := request(r, http.MethodGet, "/api/bookings?role=driver&userId=d1&status=assigned&limit=5", admin, ""); w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	want := booking.ListQuery{Role: models.RoleDriver, UserID: "d1", Status: models.StatusAssigned, Limit: 5}
	if bookings.lastQuery != want {
		t.Fatalf("got %+v, want %+v", bookings.lastQuery, want)
	}

	if w := request(r, http.MethodGet, "/api/drivers/nearby?lat=40.7&lng=-74&radiusKm=5", admin, ""); w.Code != http.StatusOK {
		t.Fatalf("nearby: %d", w.Code)
	}
	if users.center.Lat != 40.7 || users.center.Lng != -74 {
		t.Fatalf("unexpected center %+v", users.center)
	}
	if w := request(r, http.MethodGet, "/api/drivers/nearby?lat=40.7", admin, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("lat without lng should be rejected, got %d", w.Code)
	}
}

func TestEmergencyAlertResponse(t *testing.T) {
	r := newTestRouter(&fakeBookings{}, &fakeUsers{})
	w := request(r, http.MethodPost, "/api/emergency-alert", tokenFor(t, "p1", models.RolePatient), `{"location":"1.5,2.5","message":"fell"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got %d", w.Code)
	}
	var body struct {
		Message string         `json:"message"`
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message != "Emergency alert sent successfully" || !body.Booking.Emergency || body.Booking.Pickup.Location.Lat != 1.5 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://dispatch.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://dispatch.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "https://dispatch.example.com" {
		t.Fatalf("allowed origin not echoed: %v", w.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin should be refused, got %d", w.Code)
	}
}
