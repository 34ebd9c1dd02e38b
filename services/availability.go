package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"homepro-server/apperror"
	"homepro-server/models"
	"homepro-server/utils"
)

// Slot is one bookable hour
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Availability is the answer for one provider and date.
// DayOfWeek is a pointer because Sunday is 0.
type Availability struct {
	Available bool   `json:"available"`
	Date      string `json:"date,omitempty"`
	DayOfWeek *int   `json:"day_of_week,omitempty"`
	Slots     []Slot `json:"slots"`
}

// DayOfWeek returns 0 (Sunday) to 6 (Saturday) for a YYYY-MM-DD date
func DayOfWeek(date string) (int, error) {
	d, err := utils.ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(d.Weekday()), nil
}

// GenerateSlots expands weekly windows into hour slots in window order.
// A slot is unavailable when its label appears in bookedTimes. Partial trailing
// hours are dropped and overlapping windows yield repeated labels.
func GenerateSlots(windows []models.ProviderAvailability, bookedTimes []string) ([]Slot, error) {
	booked := make(map[string]bool, len(bookedTimes))
	for _, t := range bookedTimes {
		if label, err := utils.NormalizeSlotTime(t); err == nil {
			booked[label] = true
		} else {
			booked[t] = true
		}
	}

	slots := make([]Slot, 0)
	for _, w := range windows {
		startHour, err := utils.ClockHour(w.StartTime)
		if err != nil {
			return nil, fmt.Errorf("window %d start: %w", w.ID, err)
		}
		endHour, err := utils.ClockHour(w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("window %d end: %w", w.ID, err)
		}

		for hour := startHour; hour < endHour; hour++ {
			label := utils.FormatHour(hour)
			slots = append(slots, Slot{Time: label, Available: !booked[label]})
		}
	}
	return slots, nil
}

// AvailabilityService answers slot queries for providers
type AvailabilityService struct {
	db *gorm.DB
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// ForDate computes the provider's slots for one calendar date
func (s *AvailabilityService) ForDate(ctx context.Context, providerID uint, date string) (*Availability, error) {
	if date == "" {
		return nil, apperror.Validation("Please provide a date")
	}
	date, err := utils.NormalizeDate(date)
	if err != nil {
		return nil, apperror.Validation("Date must be in YYYY-MM-DD format")
	}
	dayOfWeek, _ := DayOfWeek(date)

	db := s.db.WithContext(ctx)

	var windows []models.ProviderAvailability
	if err := db.Where("provider_id = ? AND day_of_week = ? AND is_active = ?", providerID, dayOfWeek, true).
		Order("start_time, id").
		Find(&windows).Error; err != nil {
		return nil, fmt.Errorf("load availability windows: %w", err)
	}

	if len(windows) == 0 {
		return &Availability{Available: false, Slots: []Slot{}}, nil
	}

	var bookedTimes []string
	if err := db.Model(&models.Booking{}).
		Where("provider_id = ? AND service_date = ? AND status IN ?", providerID, date, models.ActiveBookingStatuses).
		Pluck("service_time", &bookedTimes).Error; err != nil {
		return nil, fmt.Errorf("load booked times: %w", err)
	}

	slots, err := GenerateSlots(windows, bookedTimes)
	if err != nil {
		return nil, fmt.Errorf("provider %d has a malformed window: %w", providerID, err)
	}

	return &Availability{
		Available: true,
		Date:      date,
		DayOfWeek: &dayOfWeek,
		Slots:     slots,
	}, nil
}
