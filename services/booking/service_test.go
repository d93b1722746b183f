package booking

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ambulink/models"
	"ambulink/utils"
)

func expectKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if !utils.IsKind(err, kind) {
		t.Fatalf("expected %s error, got %v (%s)", kind, err, utils.KindOf(err))
	}
}

func TestCreateBookingPricesAndAnnounces(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)

	if b.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	if b.PatientID != patient.ID {
		t.Fatalf("expected patient %s, got %s", patient.ID, b.PatientID)
	}
	if b.Fare.TotalFare != 84 || b.Fare.DistanceFare != 20 || b.Fare.PriorityMultiplier != 1.2 {
		t.Fatalf("unexpected fare %+v", b.Fare)
	}
	if b.PaymentStatus != models.PaymentPending {
		t.Fatalf("expected pending payment, got %s", b.PaymentStatus)
	}
	if len(b.Timeline) != 1 || b.Timeline[0].Status != models.StatusPending || b.Timeline[0].ActorID != patient.ID {
		t.Fatalf("unexpected timeline %+v", b.Timeline)
	}

	events := f.broadcaster.named(models.EventNewBooking)
	if len(events) != 1 {
		t.Fatalf("expected one newBooking event, got %d", len(events))
	}
	if got := events[0].Rooms; len(got) != 1 || got[0] != models.RoleRoom(models.RoleAdmin) {
		t.Fatalf("newBooking should go to admins only, got %v", got)
	}
	if len(f.notifier.toRole(models.RoleAdmin)) != 1 {
		t.Fatal("expected admins to be notified")
	}
	if len(f.escalator.ids) != 1 || f.escalator.ids[0] != b.ID {
		t.Fatalf("expected escalation for %s, got %v", b.ID, f.escalator.ids)
	}
}

func TestCreateBookingFillsContactFromAccount(t *testing.T) {
	f := newFixture()
	in := validInput()
	in.PatientName = ""
	in.PatientPhone = "  "

	b, err := f.svc.CreateBooking(context.Background(), patient, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.PatientName != "Jane Doe" || b.PatientPhone != "555-0100" {
		t.Fatalf("expected account contact details, got %q %q", b.PatientName, b.PatientPhone)
	}
}

func TestCreateBookingRejects(t *testing.T) {
	cases := []struct {
		name   string
		actor  models.Actor
		mutate func(*models.BookingInput)
		kind   utils.ErrorKind
	}{
		{"driver", driverOne, func(*models.BookingInput) {}, utils.KindAuthorization},
		{"admin", admin, func(*models.BookingInput) {}, utils.KindAuthorization},
		{"no pickup", patient, func(in *models.BookingInput) { in.PickupAddress = "" }, utils.KindValidation},
		{"no condition", patient, func(in *models.BookingInput) { in.MedicalCondition = " " }, utils.KindValidation},
		{"bad priority", patient, func(in *models.BookingInput) { in.Priority = "urgent" }, utils.KindValidation},
		{"bad latitude", patient, func(in *models.BookingInput) { in.PickupLocation.Lat = 91 }, utils.KindValidation},
		{"negative route", patient, func(in *models.BookingInput) { in.Route = &models.Route{DistanceKm: -1} }, utils.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			in := validInput()
			tc.mutate(&in)
			_, err := f.svc.CreateBooking(context.Background(), tc.actor, in)
			expectKind(t, err, tc.kind)
			if n := len(f.broadcaster.named(models.EventNewBooking)); n != 0 {
				t.Fatalf("rejected booking must not be announced, got %d events", n)
			}
		})
	}
}

func TestAssignDriver(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)

	got, err := f.svc.AssignDriver(context.Background(), admin, b.ID, driverOne.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.Status != models.StatusAssigned || got.DriverID != driverOne.ID {
		t.Fatalf("expected assigned to d1, got %s/%s", got.Status, got.DriverID)
	}
	// The driver already stands at the pickup.
	if got.EstimatedArrival == nil || !got.EstimatedArrival.Equal(testNow) {
		t.Fatalf("unexpected ETA %v", got.EstimatedArrival)
	}
	if f.users.get(driverOne.ID).Available {
		t.Fatal("assigned driver must be unavailable")
	}
	if len(got.Timeline) != 2 || got.Timeline[1].Status != models.StatusAssigned {
		t.Fatalf("unexpected timeline %+v", got.Timeline)
	}
	if len(f.notifier.to(patient.ID)) != 1 || len(f.notifier.to(driverOne.ID)) != 1 {
		t.Fatal("expected patient and driver notifications")
	}

	updates := f.broadcaster.named(models.EventBookingUpdated)
	if len(updates) != 1 {
		t.Fatalf("expected one bookingUpdated event, got %d", len(updates))
	}
	rooms := strings.Join(updates[0].Rooms, " ")
	for _, want := range []string{b.ID, models.UserRoom(patient.ID), models.UserRoom(driverOne.ID)} {
		if !strings.Contains(rooms, want) {
			t.Fatalf("bookingUpdated rooms %v missing %s", updates[0].Rooms, want)
		}
	}
}

func TestAssignDriverFallbackETA(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)

	got, err := f.svc.AssignDriver(context.Background(), admin, b.ID, driverTwo.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if want := testNow.Add(30 * time.Minute); !got.EstimatedArrival.Equal(want) {
		t.Fatalf("expected ETA %v, got %v", want, got.EstimatedArrival)
	}
}

func TestAssignDriverRejects(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)
	ctx := context.Background()

	_, err := f.svc.AssignDriver(ctx, patient, b.ID, driverOne.ID)
	expectKind(t, err, utils.KindAuthorization)

	_, err = f.svc.AssignDriver(ctx, admin, "missing", driverOne.ID)
	expectKind(t, err, utils.KindNotFound)

	_, err = f.svc.AssignDriver(ctx, admin, b.ID, "ghost")
	expectKind(t, err, utils.KindNotFound)

	_, err = f.svc.AssignDriver(ctx, admin, b.ID, patient.ID)
	expectKind(t, err, utils.KindValidation)

	_, err = f.svc.AssignDriver(ctx, admin, b.ID, "")
	expectKind(t, err, utils.KindValidation)

	if err := f.users.UpdateAvailability(ctx, driverOne.ID, false); err != nil {
		t.Fatal(err)
	}
	_, err = f.svc.AssignDriver(ctx, admin, b.ID, driverOne.ID)
	expectKind(t, err, utils.KindValidation)

	if got := f.bookings.get(b.ID); got.Status != models.StatusPending || got.DriverID != "" {
		t.Fatalf("rejected assignments must not change the booking, got %s/%q", got.Status, got.DriverID)
	}
}

func TestAssignDriverRequiresPendingBooking(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)
	if _, err := f.svc.AssignDriver(context.Background(), admin, b.ID, driverOne.ID); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.AssignDriver(context.Background(), admin, b.ID, driverTwo.ID)
	expectKind(t, err, utils.KindValidation)
	if !f.users.get(driverTwo.ID).Available {
		t.Fatal("rejected driver must stay available")
	}
}

func TestAssignDriverClaimRace(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)
	// Another dispatcher takes the driver between the availability check and the claim.
	f.users.beforeClaim = func(id string) {
		_ = f.users.UpdateAvailability(context.Background(), id, false)
	}

	_, err := f.svc.AssignDriver(context.Background(), admin, b.ID, driverOne.ID)
	expectKind(t, err, utils.KindConflict)
	if got := f.bookings.get(b.ID); got.Status != models.StatusPending {
		t.Fatalf("booking must stay pending, got %s", got.Status)
	}
}

func TestConcurrentAssignOneWins(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)

	var loaded sync.WaitGroup
	loaded.Add(2)
	f.bookings.afterFind = func() {
		loaded.Done()
		loaded.Wait()
	}

	drivers := []string{driverOne.ID, driverTwo.ID}
	errs := make([]error, len(drivers))
	var wg sync.WaitGroup
	for i, d := range drivers {
		wg.Add(1)
		go func(i int, d string) {
			defer wg.Done()
			_, errs[i] = f.svc.AssignDriver(context.Background(), admin, b.ID, d)
		}(i, d)
	}
	wg.Wait()
	f.bookings.afterFind = nil

	winner, conflicts := -1, 0
	for i, err := range errs {
		switch {
		case err == nil:
			winner = i
		case utils.IsKind(err, utils.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winner < 0 || conflicts != 1 {
		t.Fatalf("expected one winner and one conflict, got %v", errs)
	}

	got := f.bookings.get(b.ID)
	if got.DriverID != drivers[winner] {
		t.Fatalf("booking holds %s, winner was %s", got.DriverID, drivers[winner])
	}
	loser := drivers[1-winner]
	if !f.users.get(loser).Available {
		t.Fatal("losing driver must be released")
	}
	if f.users.get(drivers[winner]).Available {
		t.Fatal("winning driver must stay claimed")
	}
}

func TestConcurrentAssignSameDriver(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)
	ctx := context.Background()

	// The first load parks until the other dispatcher has assigned the driver.
	loaded := make(chan struct{})
	resume := make(chan struct{})
	var finds int32
	f.bookings.afterFind = func() {
		if atomic.AddInt32(&finds, 1) == 1 {
			close(loaded)
			<-resume
		}
	}

	errc := make(chan error, 1)
	go func() {
		_, err := f.svc.AssignDriver(ctx, admin, b.ID, driverOne.ID)
		errc <- err
	}()
	<-loaded
	if _, err := f.svc.AssignDriver(ctx, admin, b.ID, driverOne.ID); err != nil {
		t.Fatalf("first assignment: %v", err)
	}
	close(resume)
	expectKind(t, <-errc, utils.KindConflict)

	got := f.bookings.get(b.ID)
	if got.Status != models.StatusAssigned || got.DriverID != driverOne.ID {
		t.Fatalf("booking should keep the first assignment, got %s/%q", got.Status, got.DriverID)
	}
	if f.users.get(driverOne.ID).Available {
		t.Fatal("assigned driver must stay claimed")
	}
}

func TestRideLifecycle(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)
	ctx := context.Background()
	if _, err := f.svc.AssignDriver(ctx, admin, b.ID, driverOne.ID); err != nil {
		t.Fatal(err)
	}

	got := f.advance(t, b.ID, driverOne, models.StatusEnRoute, models.StatusArrived)
	if got.ActualArrival == nil {
		t.Fatal("arrival time must be recorded")
	}
	got = f.advance(t, b.ID, driverOne, models.StatusCompleted)

	if got.CompletedAt == nil || !got.CompletedAt.Equal(testNow) {
		t.Fatalf("unexpected completedAt %v", got.CompletedAt)
	}
	if len(got.Timeline) != 5 {
		t.Fatalf("expected 5 timeline entries, got %d", len(got.Timeline))
	}
	for i, want := range []models.BookingStatus{
		models.StatusPending, models.StatusAssigned, models.StatusEnRoute, models.StatusArrived, models.StatusCompleted,
	} {
		if got.Timeline[i].Status != want {
			t.Fatalf("timeline[%d] = %s, want %s", i, got.Timeline[i].Status, want)
		}
	}
	if !f.users.get(driverOne.ID).Available {
		t.Fatal("driver must be released after completion")
	}
	// assign, en_route, arrived, completed
	if n := len(f.notifier.to(patient.ID)); n != 4 {
		t.Fatalf("expected 4 patient notifications, got %d", n)
	}

	_, err := f.svc.UpdateStatus(ctx, admin, b.ID, models.StatusCancelled, "")
	expectKind(t, err, utils.KindInvalidTransition)
}

func TestUpdateStatusRejects(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, admin, b.ID, models.StatusCompleted, "")
	expectKind(t, err, utils.KindInvalidTransition)

	_, err = f.svc.UpdateStatus(ctx, admin, b.ID, "teleported", "")
	expectKind(t, err, utils.KindValidation)

	_, err = f.svc.UpdateStatus(ctx, admin, b.ID, models.StatusAssigned, "")
	expectKind(t, err, utils.KindValidation)

	_, err = f.svc.UpdateStatus(ctx, otherPatient, b.ID, models.StatusCancelled, "")
	expectKind(t, err, utils.KindAuthorization)

	_, err = f.svc.UpdateStatus(ctx, driverOne, b.ID, models.StatusCancelled, "")
	expectKind(t, err, utils.KindAuthorization)

	_, err = f.svc.UpdateStatus(ctx, admin, "missing", models.StatusCancelled, "")
	expectKind(t, err, utils.KindNotFound)

	if _, err := f.svc.AssignDriver(ctx, admin, b.ID, driverOne.ID); err != nil {
		t.Fatal(err)
	}
	_, err = f.svc.UpdateStatus(ctx, patient, b.ID, models.StatusEnRoute, "")
	expectKind(t, err, utils.KindAuthorization)

	_, err = f.svc.UpdateStatus(ctx, driverTwo, b.ID, models.StatusEnRoute, "")
	expectKind(t, err, utils.KindAuthorization)

	_, err = f.svc.UpdateStatus(ctx, driverOne, b.ID, models.StatusArrived, "")
	expectKind(t, err, utils.KindInvalidTransition)

	if got := f.bookings.get(b.ID); got.Status != models.StatusAssigned || len(got.Timeline) != 2 {
		t.Fatalf("rejected updates must not change the booking, got %s with %d entries", got.Status, len(got.Timeline))
	}
}

func TestPatientCancelsPendingBooking(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)

	got, err := f.svc.UpdateStatus(context.Background(), patient, b.ID, models.StatusCancelled, "no longer needed")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.CancelledAt == nil || got.CancellationReason != "no longer needed" {
		t.Fatalf("cancellation not recorded: %+v", got)
	}
	if n := len(f.notifier.to(patient.ID)); n != 0 {
		t.Fatalf("patient should not be notified of their own cancellation, got %d", n)
	}
}

func TestCancelAssignedBookingReleasesDriver(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)
	ctx := context.Background()
	if _, err := f.svc.AssignDriver(ctx, admin, b.ID, driverOne.ID); err != nil {
		t.Fatal(err)
	}
	before := len(f.notifier.to(driverOne.ID))

	if _, err := f.svc.UpdateStatus(ctx, patient, b.ID, models.StatusCancelled, "found a ride"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !f.users.get(driverOne.ID).Available {
		t.Fatal("driver must be released after cancellation")
	}
	if len(f.notifier.to(driverOne.ID)) != before+1 {
		t.Fatal("driver must be told about the cancellation")
	}
}

func TestStaleWriteConflicts(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)
	stale := f.bookings.get(b.ID)

	if _, err := f.svc.UpdateStatus(context.Background(), patient, b.ID, models.StatusCancelled, ""); err != nil {
		t.Fatal(err)
	}

	stale.Status = models.StatusCancelled
	err := f.svc.commit(context.Background(), stale, models.StatusPending)
	expectKind(t, err, utils.KindConflict)
}

func completedRide(t *testing.T, f *fixture, driver models.Actor) *models.Booking {
	t.Helper()
	b := f.pendingBooking(t)
	if _, err := f.svc.AssignDriver(context.Background(), admin, b.ID, driver.ID); err != nil {
		t.Fatal(err)
	}
	return f.advance(t, b.ID, driver, models.StatusEnRoute, models.StatusArrived, models.StatusCompleted)
}

func TestSubmitFeedback(t *testing.T) {
	f := newFixture()
	b := completedRide(t, f, driverOne)
	ctx := context.Background()

	got, err := f.svc.SubmitFeedback(ctx, patient, b.ID, 5, "  great crew ")
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if got.Feedback == nil || got.Feedback.Rating != 5 || got.Feedback.Comment != "great crew" {
		t.Fatalf("unexpected feedback %+v", got.Feedback)
	}
	if d := f.users.get(driverOne.ID); d.Rating != 5 || d.TotalRides != 1 {
		t.Fatalf("unexpected driver rating %v over %d rides", d.Rating, d.TotalRides)
	}

	_, err = f.svc.SubmitFeedback(ctx, patient, b.ID, 4, "")
	expectKind(t, err, utils.KindConflict)
	if d := f.users.get(driverOne.ID); d.TotalRides != 1 {
		t.Fatalf("duplicate feedback must not count, got %d rides", d.TotalRides)
	}
}

func TestDriverRatingAverages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, rating := range []int{5, 3} {
		b := completedRide(t, f, driverOne)
		if _, err := f.svc.SubmitFeedback(ctx, patient, b.ID, rating, ""); err != nil {
			t.Fatal(err)
		}
	}
	if d := f.users.get(driverOne.ID); d.Rating != 4 || d.TotalRides != 2 {
		t.Fatalf("expected average 4 over 2 rides, got %v over %d", d.Rating, d.TotalRides)
	}
}

func TestSubmitFeedbackRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	done := completedRide(t, f, driverOne)
	open := f.pendingBooking(t)

	_, err := f.svc.SubmitFeedback(ctx, otherPatient, done.ID, 5, "")
	expectKind(t, err, utils.KindAuthorization)

	_, err = f.svc.SubmitFeedback(ctx, admin, done.ID, 5, "")
	expectKind(t, err, utils.KindAuthorization)

	_, err = f.svc.SubmitFeedback(ctx, patient, open.ID, 5, "")
	expectKind(t, err, utils.KindAuthorization)

	for _, rating := range []int{0, 6, -1} {
		_, err = f.svc.SubmitFeedback(ctx, patient, done.ID, rating, "")
		expectKind(t, err, utils.KindValidation)
	}

	_, err = f.svc.SubmitFeedback(ctx, patient, done.ID, 4, strings.Repeat("é", maxCommentLength+1))
	expectKind(t, err, utils.KindValidation)

	_, err = f.svc.SubmitFeedback(ctx, patient, done.ID, 4, strings.Repeat("é", maxCommentLength))
	if err != nil {
		t.Fatalf("comment at the limit must be accepted: %v", err)
	}

	_, err = f.svc.SubmitFeedback(ctx, patient, "missing", 4, "")
	expectKind(t, err, utils.KindNotFound)
}

func TestEmergencyAlertUsesNearestHospital(t *testing.T) {
	f := newFixture()
	f.svc.Hospitals = fixedHospitals{hospital: &models.Hospital{
		Name:        "Mercy General",
		Address:     "4001 J St",
		Coordinates: models.Coordinates{Lat: 40.7580, Lng: -73.9855},
	}}
	at := models.Coordinates{Lat: 40.7128, Lng: -74.0060}

	b, err := f.svc.CreateEmergencyAlert(context.Background(), patient, at, "")
	if err != nil {
		t.Fatalf("emergency: %v", err)
	}
	if !b.Emergency || b.Priority != models.PriorityCritical || b.Status != models.StatusPending {
		t.Fatalf("unexpected emergency booking %+v", b)
	}
	if b.MedicalCondition != defaultEmergencyMessage {
		t.Fatalf("expected default message, got %q", b.MedicalCondition)
	}
	if !strings.HasPrefix(b.Destination.Address, "Mercy General") {
		t.Fatalf("expected hospital destination, got %q", b.Destination.Address)
	}
	if b.PatientPhone != "555-0100" {
		t.Fatalf("expected account phone, got %q", b.PatientPhone)
	}
	if b.Fare.TotalFare <= 100 {
		t.Fatalf("fare should include the distance to the hospital, got %v", b.Fare.TotalFare)
	}

	alerts := f.broadcaster.named(models.EventEmergencyAlert)
	if len(alerts) != 1 || !alerts[0].Broadcast() {
		t.Fatalf("expected one broadcast emergencyAlert, got %+v", alerts)
	}
	if len(f.broadcaster.named(models.EventNewBooking)) != 1 {
		t.Fatal("expected newBooking for the emergency booking")
	}

	admins := f.notifier.toRole(models.RoleAdmin)
	if len(admins) != 1 || admins[0].Kind != models.NotificationEmergency {
		t.Fatalf("expected one emergency notification to admins, got %+v", admins)
	}
	for _, d := range []string{driverOne.ID, driverTwo.ID} {
		got := f.notifier.to(d)
		if len(got) != 1 || got[0].Kind != models.NotificationEmergency {
			t.Fatalf("expected emergency notification for %s, got %+v", d, got)
		}
	}
}

func TestEmergencyAlertPlaceholderDestination(t *testing.T) {
	f := newFixture()
	f.svc.Hospitals = fixedHospitals{}
	at := models.Coordinates{Lat: 40.7128, Lng: -74.0060}

	b, err := f.svc.CreateEmergencyAlert(context.Background(), patient, at, "fell down the stairs")
	if err != nil {
		t.Fatalf("emergency: %v", err)
	}
	if b.Destination.Address != placeholderDestination || b.Destination.Location != at {
		t.Fatalf("expected placeholder destination, got %+v", b.Destination)
	}
	if b.Fare.TotalFare != 100 {
		t.Fatalf("expected flat critical fare 100, got %v", b.Fare.TotalFare)
	}
	if b.MedicalCondition != "fell down the stairs" {
		t.Fatalf("unexpected message %q", b.MedicalCondition)
	}
}

func TestEmergencyAlertRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateEmergencyAlert(ctx, driverOne, models.Coordinates{Lat: 1, Lng: 1}, "")
	expectKind(t, err, utils.KindAuthorization)

	_, err = f.svc.CreateEmergencyAlert(ctx, patient, models.Coordinates{}, "")
	expectKind(t, err, utils.KindValidation)

	_, err = f.svc.CreateEmergencyAlert(ctx, patient, models.Coordinates{Lat: 120, Lng: 1}, "")
	expectKind(t, err, utils.KindValidation)
}

func TestGetBookingVisibility(t *testing.T) {
	f := newFixture()
	b := f.pendingBooking(t)
	ctx := context.Background()

	for _, actor := range []models.Actor{patient, admin, driverOne, driverTwo} {
		if _, err := f.svc.GetBooking(ctx, actor, b.ID); err != nil {
			t.Fatalf("%s should see pending booking: %v", actor.ID, err)
		}
	}
	_, err := f.svc.GetBooking(ctx, otherPatient, b.ID)
	expectKind(t, err, utils.KindAuthorization)

	if _, err := f.svc.AssignDriver(ctx, admin, b.ID, driverOne.ID); err != nil {
		t.Fatal(err)
	}
	_, err = f.svc.GetBooking(ctx, driverTwo, b.ID)
	expectKind(t, err, utils.KindAuthorization)
	if _, err := f.svc.GetBooking(ctx, driverOne, b.ID); err != nil {
		t.Fatalf("assigned driver should see booking: %v", err)
	}

	if err := f.svc.CanJoinRoom(ctx, driverTwo, b.ID); !utils.IsKind(err, utils.KindAuthorization) {
		t.Fatalf("other driver must not join the booking room, got %v", err)
	}
	if err := f.svc.CanJoinRoom(ctx, patient, b.ID); err != nil {
		t.Fatalf("patient should join the booking room: %v", err)
	}
}

func TestListBookingsScoping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	mine := f.pendingBooking(t)
	theirs, err := f.svc.CreateBooking(ctx, otherPatient, validInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.AssignDriver(ctx, admin, theirs.ID, driverOne.ID); err != nil {
		t.Fatal(err)
	}

	list, err := f.svc.ListBookings(ctx, patient, ListQuery{Role: models.RoleDriver, UserID: driverOne.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Fatalf("patient must only see own bookings, got %d", len(list))
	}

	list, err = f.svc.ListBookings(ctx, driverOne, ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != theirs.ID {
		t.Fatalf("driver must only see assignments, got %d", len(list))
	}

	list, err = f.svc.ListBookings(ctx, admin, ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("admin should see all bookings, got %d", len(list))
	}

	list, err = f.svc.ListBookings(ctx, admin, ListQuery{Role: models.RolePatient, UserID: otherPatient.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != theirs.ID {
		t.Fatalf("admin filter by patient failed, got %d", len(list))
	}

	list, err = f.svc.ListBookings(ctx, admin, ListQuery{Status: models.StatusPending})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Fatalf("status filter failed, got %d", len(list))
	}

	_, err = f.svc.ListBookings(ctx, admin, ListQuery{UserID: otherPatient.ID})
	expectKind(t, err, utils.KindValidation)

	_, err = f.svc.ListBookings(ctx, admin, ListQuery{Status: "lost"})
	expectKind(t, err, utils.KindValidation)
}
