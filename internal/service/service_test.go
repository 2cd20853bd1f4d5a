package service

import (
	"context"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"checkup-reservation/internal/repository"
	"checkup-reservation/internal/repository/sqlite"
)

type testStores struct {
	users        repository.UserRepository
	reservations repository.ReservationRepository
}

func setupStores(t *testing.T) testStores {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "checkup.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := testStores{
		users:        sqlite.NewUserRepository(db),
		reservations: sqlite.NewReservationRepository(db),
	}
	ctx := context.Background()
	if err := st.users.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := st.reservations.Init(ctx); err != nil {
		t.Fatalf("init reservations: %v", err)
	}
	return st
}

func newTestUserService(users repository.UserRepository) UserService {
	return NewUserService(users, WithHashCost(bcrypt.MinCost))
}

func mustSignup(t *testing.T, users UserService, employeeNo, email string) int64 {
	t.Helper()
	id, err := users.Signup(context.Background(), employeeNo, "Employee "+employeeNo, email, "password123")
	if err != nil {
		t.Fatalf("signup %s: %v", employeeNo, err)
	}
	return id
}
