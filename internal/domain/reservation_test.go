package domain

import (
	"testing"
	"time"
)

func TestCanonicalSlots(t *testing.T) {
	want := []string{
		"09:00-10:00", "10:00-11:00", "11:00-12:00", "12:00-13:00",
		"13:00-14:00", "14:00-15:00", "15:00-16:00", "16:00-17:00",
	}
	got := CanonicalSlots()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestParseCheckupDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "valid", input: "2024-06-10", want: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{name: "leap day", input: "2024-02-29", want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{name: "not a leap year", input: "2023-02-29", wantErr: true},
		{name: "month out of range", input: "2024-13-01", wantErr: true},
		{name: "wrong separator", input: "2024/06/10", wantErr: true},
		{name: "with time", input: "2024-06-10T09:00:00Z", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCheckupDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if FormatCheckupDate(got) != tt.input {
				t.Errorf("expected round trip to %s, got %s", tt.input, FormatCheckupDate(got))
			}
		})
	}
}

func TestValidTimeSlot(t *testing.T) {
	valid := []string{"09:00-10:00", "16:00-17:00", "08:30-09:30"}
	for _, slot := range valid {
		if !ValidTimeSlot(slot) {
			t.Errorf("expected %q to be valid", slot)
		}
	}
	invalid := []string{"", "9:00-10:00", "09:00~10:00", "09:00-10:00 ", "0900-1000"}
	for _, slot := range invalid {
		if ValidTimeSlot(slot) {
			t.Errorf("expected %q to be invalid", slot)
		}
	}
}

func TestReservationCancel(t *testing.T) {
	r := Reservation{Status: ReservationStatusReserved}
	r.Cancel()
	if r.Status != ReservationStatusCanceled {
		t.Fatalf("expected CANCELED, got %s", r.Status)
	}
	r.Cancel()
	if r.Status != ReservationStatusCanceled {
		t.Fatalf("expected CANCELED after second cancel, got %s", r.Status)
	}
}
