package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"checkup-reservation/internal/domain"
	"checkup-reservation/internal/repository"
)

func newReservationFixture(t *testing.T) (ReservationService, UserService, testStores) {
	t.Helper()
	st := setupStores(t)
	return NewReservationService(st.reservations, st.users), newTestUserService(st.users), st
}

func contains(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

func TestAvailableSlotsEmptyDay(t *testing.T) {
	reservations, _, _ := newReservationFixture(t)

	for _, date := range []string{"2024-06-10", "2025-01-01", "1999-12-31"} {
		slots, err := reservations.AvailableSlots(context.Background(), date)
		if err != nil {
			t.Fatalf("available slots %s: %v", date, err)
		}
		if !reflect.DeepEqual(slots, domain.CanonicalSlots()) {
			t.Errorf("%s: expected all canonical slots, got %v", date, slots)
		}
	}
}

func TestAvailableSlotsInvalidDate(t *testing.T) {
	reservations, _, _ := newReservationFixture(t)

	for _, date := range []string{"", "2024-6-10", "2024-02-30", "tomorrow"} {
		if _, err := reservations.AvailableSlots(context.Background(), date); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("%q: expected ErrInvalidDate, got %v", date, err)
		}
	}
}

func TestCreateReservationValidation(t *testing.T) {
	reservations, users, _ := newReservationFixture(t)
	ctx := context.Background()
	mustSignup(t, users, "E1", "e1@x.com")

	if _, err := reservations.Create(ctx, "nobody", "2024-06-10", "09:00-10:00"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := reservations.Create(ctx, "E1", "2024-13-10", "09:00-10:00"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := reservations.Create(ctx, "E1", "2024-06-10", "9-10"); !errors.Is(err, ErrInvalidTimeSlot) {
		t.Errorf("expected ErrInvalidTimeSlot, got %v", err)
	}
}

func TestCreateReservationTwiceFails(t *testing.T) {
	reservations, users, _ := newReservationFixture(t)
	ctx := context.Background()
	mustSignup(t, users, "E1", "e1@x.com")
	mustSignup(t, users, "E2", "e2@x.com")

	if _, err := reservations.Create(ctx, "E1", "2024-06-10", "10:00-11:00"); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := reservations.Create(ctx, "E2", "2024-06-10", "10:00-11:00"); !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Errorf("expected ErrSlotAlreadyBooked, got %v", err)
	}
	if _, err := reservations.Create(ctx, "E2", "2024-06-11", "10:00-11:00"); err != nil {
		t.Errorf("same slot on another day should succeed: %v", err)
	}
}

// blindReservations skips the pre-check so the store constraint is the only guard.
type blindReservations struct {
	repository.ReservationRepository
}

func (blindReservations) ExistsReserved(context.Context, time.Time, string) (bool, error) {
	return false, nil
}

func TestCreateReservationStoreConstraintMapsToSlotAlreadyBooked(t *testing.T) {
	st := setupStores(t)
	users := newTestUserService(st.users)
	reservations := NewReservationService(blindReservations{st.reservations}, st.users)
	ctx := context.Background()
	mustSignup(t, users, "E1", "e1@x.com")

	if _, err := reservations.Create(ctx, "E1", "2024-06-10", "09:00-10:00"); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := reservations.Create(ctx, "E1", "2024-06-10", "09:00-10:00"); !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Errorf("expected ErrSlotAlreadyBooked from the store constraint, got %v", err)
	}
}

func TestCreateReservationConcurrent(t *testing.T) {
	reservations, users, st := newReservationFixture(t)
	ctx := context.Background()

	const attempts = 10
	employees := make([]string, attempts)
	for i := range employees {
		employees[i] = "E" + string(rune('A'+i))
		mustSignup(t, users, employees[i], employees[i]+"@x.com")
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		others    []error
	)
	for _, emp := range employees {
		wg.Add(1)
		go func(emp string) {
			defer wg.Done()
			_, err := reservations.Create(ctx, emp, "2024-06-10", "13:00-14:00")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotAlreadyBooked):
			default:
				others = append(others, err)
			}
		}(emp)
	}
	wg.Wait()

	if len(others) > 0 {
		t.Fatalf("unexpected errors: %v", others)
	}
	if successes != 1 {
		t.Fatalf("expected exactly one booking to succeed, got %d", successes)
	}

	date, _ := domain.ParseCheckupDate("2024-06-10")
	slots, err := st.reservations.ReservedSlots(ctx, date)
	if err != nil {
		t.Fatalf("reserved slots: %v", err)
	}
	if len(slots) != 1 {
		t.Errorf("expected one RESERVED row, got %v", slots)
	}
}

func TestListMineOrdersByDate(t *testing.T) {
	reservations, users, _ := newReservationFixture(t)
	ctx := context.Background()
	mustSignup(t, users, "E1", "e1@x.com")
	mustSignup(t, users, "E2", "e2@x.com")

	for _, in := range [][2]string{
		{"2024-08-01", "09:00-10:00"},
		{"2024-06-10", "11:00-12:00"},
		{"2024-07-15", "16:00-17:00"},
	} {
		if _, err := reservations.Create(ctx, "E1", in[0], in[1]); err != nil {
			t.Fatalf("create %v: %v", in, err)
		}
	}
	if _, err := reservations.Create(ctx, "E2", "2024-01-01", "09:00-10:00"); err != nil {
		t.Fatalf("create other: %v", err)
	}

	views, err := reservations.ListMine(ctx, "E1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var dates []string
	for _, v := range views {
		dates = append(dates, v.CheckupDate)
		if v.Status != "RESERVED" {
			t.Errorf("expected RESERVED, got %s", v.Status)
		}
	}
	want := []string{"2024-06-10", "2024-07-15", "2024-08-01"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("expected %v, got %v", want, dates)
	}

	if _, err := reservations.ListMine(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	none, err := reservations.ListMine(ctx, "E2")
	if err != nil || len(none) != 1 {
		t.Errorf("expected E2 to see only its own reservation, got %v %v", none, err)
	}
}

func TestCancelOwnership(t *testing.T) {
	reservations, users, _ := newReservationFixture(t)
	ctx := context.Background()
	mustSignup(t, users, "E1", "e1@x.com")
	mustSignup(t, users, "E2", "e2@x.com")

	id, err := reservations.Create(ctx, "E1", "2024-06-10", "09:00-10:00")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	notOwned := reservations.Cancel(ctx, id, "E2")
	missing := reservations.Cancel(ctx, id+1000, "E2")
	if !errors.Is(notOwned, ErrReservationNotFoundOrNotOwned) {
		t.Errorf("expected ErrReservationNotFoundOrNotOwned for stranger, got %v", notOwned)
	}
	if !errors.Is(missing, ErrReservationNotFoundOrNotOwned) {
		t.Errorf("expected ErrReservationNotFoundOrNotOwned for missing id, got %v", missing)
	}
	if notOwned.Error() != missing.Error() {
		t.Errorf("expected identical errors, got %q and %q", notOwned, missing)
	}

	if err := reservations.Cancel(ctx, id, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCancelTwiceSucceeds(t *testing.T) {
	reservations, users, _ := newReservationFixture(t)
	ctx := context.Background()
	mustSignup(t, users, "E1", "e1@x.com")

	id, err := reservations.Create(ctx, "E1", "2024-06-10", "09:00-10:00")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := reservations.Cancel(ctx, id, "E1"); err != nil {
			t.Fatalf("cancel %d: %v", i, err)
		}
	}

	views, err := reservations.ListMine(ctx, "E1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].Status != "CANCELED" {
		t.Errorf("expected one CANCELED reservation, got %+v", views)
	}
}

func TestBookCancelRebookScenario(t *testing.T) {
	reservations, users, _ := newReservationFixture(t)
	ctx := context.Background()
	mustSignup(t, users, "E1", "e1@x.com")

	id, err := reservations.Create(ctx, "E1", "2024-06-10", "09:00-10:00")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 1 {
		t.Errorf("expected first reservation id 1, got %d", id)
	}

	slots, err := reservations.AvailableSlots(ctx, "2024-06-10")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if contains(slots, "09:00-10:00") || len(slots) != 7 {
		t.Errorf("expected 09:00-10:00 to be excluded, got %v", slots)
	}

	if err := reservations.Cancel(ctx, id, "E1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	slots, err = reservations.AvailableSlots(ctx, "2024-06-10")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if !reflect.DeepEqual(slots, domain.CanonicalSlots()) {
		t.Errorf("expected every slot back after cancel, got %v", slots)
	}

	if _, err := reservations.Create(ctx, "E1", "2024-06-10", "09:00-10:00"); err != nil {
		t.Errorf("rebooking a canceled slot should succeed: %v", err)
	}
}
