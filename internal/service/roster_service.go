package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"checkup-reservation/internal/domain"
	"checkup-reservation/internal/repository"
	"checkup-reservation/internal/storage"
)

const (
	rosterSheet       = "Roster"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultRosterTTL  = 15 * time.Minute
	defaultRosterRoot = "rosters"
)

// RosterExport describes an uploaded daily roster.
type RosterExport struct {
	Location string
	Key      string
	URL      string
	Entries  int
}

// RosterService exports the reserved slots of a day as a spreadsheet.
type RosterService interface {
	Export(ctx context.Context, checkupDate string) (*RosterExport, error)
	List(ctx context.Context, checkupDate string) ([]storage.ObjectInfo, error)
}

type RosterConfig struct {
	Bucket    string
	KeyPrefix string
	URLExpiry time.Duration
}

type rosterService struct {
	reservations repository.ReservationRepository
	store        storage.Service
	cfg          RosterConfig
}

func NewRosterService(reservations repository.ReservationRepository, store storage.Service, cfg RosterConfig) RosterService {
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = defaultRosterTTL
	}
	return &rosterService{
		reservations: reservations,
		store:        store,
		cfg:          cfg,
	}
}

func (s *rosterService) Export(ctx context.Context, checkupDate string) (*RosterExport, error) {
	date, err := parseDate(checkupDate)
	if err != nil {
		return nil, err
	}

	entries, err := s.reservations.ListRoster(ctx, date)
	if err != nil {
		return nil, err
	}

	f, err := buildRosterWorkbook(date, entries)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write roster workbook: %w", err)
	}

	key := path.Join(s.prefix(date), fmt.Sprintf("%s-%s.xlsx", checkupDate, uuid.NewString()))
	location, err := s.store.PutObject(ctx, buf, storage.PutOptions{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: xlsxContentType,
	})
	if err != nil {
		return nil, err
	}

	url, err := s.store.GetObjectURL(ctx, s.cfg.Bucket, key, s.cfg.URLExpiry)
	if err != nil {
		return nil, err
	}

	return &RosterExport{
		Location: location,
		Key:      key,
		URL:      url,
		Entries:  len(entries),
	}, nil
}

func (s *rosterService) List(ctx context.Context, checkupDate string) ([]storage.ObjectInfo, error) {
	date, err := parseDate(checkupDate)
	if err != nil {
		return nil, err
	}
	return s.store.ListObjects(ctx, s.cfg.Bucket, s.prefix(date)+"/"+checkupDate+"-")
}

func (s *rosterService) prefix(date time.Time) string {
	return path.Join(s.cfg.KeyPrefix, defaultRosterRoot, date.Format("2006-01"))
}

// buildRosterWorkbook lays out one row per canonical slot, then any reservation
// booked outside the canonical hours.
func buildRosterWorkbook(date time.Time, entries []domain.RosterEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetCellValue(rosterSheet, "A1", "Checkup roster "+domain.FormatCheckupDate(date)); err != nil {
		f.Close()
		return nil, fmt.Errorf("set title: %w", err)
	}
	header := []any{"Time slot", "Reservation", "Employee no", "Name", "Email"}
	if err := f.SetSheetRow(rosterSheet, "A2", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("set header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	}); err == nil {
		_ = f.SetCellStyle(rosterSheet, "A2", "E2", style)
	}

	bySlot := make(map[string]domain.RosterEntry, len(entries))
	for _, entry := range entries {
		bySlot[entry.TimeSlot] = entry
	}

	rows := make([][]any, 0, len(entries)+8)
	for _, slot := range domain.CanonicalSlots() {
		entry, ok := bySlot[slot]
		if !ok {
			rows = append(rows, []any{slot})
			continue
		}
		rows = append(rows, rosterRow(entry))
		delete(bySlot, slot)
	}
	for _, entry := range entries {
		if _, ok := bySlot[entry.TimeSlot]; ok {
			rows = append(rows, rosterRow(entry))
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("set row %d: %w", i+3, err)
		}
	}

	_ = f.SetColWidth(rosterSheet, "A", "A", 14)
	_ = f.SetColWidth(rosterSheet, "D", "E", 28)
	return f, nil
}

func rosterRow(entry domain.RosterEntry) []any {
	return []any{entry.TimeSlot, entry.ReservationID, entry.EmployeeNo, entry.Name, entry.Email}
}
