package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
)

var activeSlotStatuses = []string{"approved", "upcoming", "ongoing"}

type slotSource interface {
	WeeklySlots(ctx context.Context, mentorID int64, weekday time.Weekday) ([]string, error)
	SpecialSlots(ctx context.Context, mentorID int64, date time.Time) ([]string, error)
}

type bookedSessionSource interface {
	ListByMentorAndDate(ctx context.Context, mentorID int64, date time.Time, statuses []string) ([]models.Session, error)
}

// AvailabilityService resolves the bookable slots for a mentor on a date by
// merging special and recurring weekly availability, then subtracting the
// hours consumed by active sessions.
type AvailabilityService struct {
	slots    slotSource
	sessions bookedSessionSource
}

func NewAvailabilityService(slots slotSource, sessions bookedSessionSource) *AvailabilityService {
	return &AvailabilityService{slots: slots, sessions: sessions}
}

func (s *AvailabilityService) AvailableSlots(
	ctx context.Context,
	mentorID int64,
	date time.Time,
	hours int,
) ([]string, error) {
	if mentorID <= 0 {
		return nil, ErrInvalidInput
	}
	if hours <= 0 {
		hours = 1
	}

	special, err := s.slots.SpecialSlots(ctx, mentorID, date)
	if err != nil {
		return nil, err
	}
	weekly, err := s.slots.WeeklySlots(ctx, mentorID, date.Weekday())
	if err != nil {
		return nil, err
	}

	configured := mergeSlots(special, weekly)
	if len(configured) == 0 {
		return []string{}, nil
	}

	booked, err := s.bookedSlots(ctx, mentorID, date)
	if err != nil {
		return nil, err
	}

	available := make([]string, 0, len(configured))
	for _, slot := range configured {
		if overlapsBooked(slot, hours, booked) {
			continue
		}
		available = append(available, slot)
	}
	return available, nil
}

// IsSlotAvailable reports whether a session of the given length could still
// start at the slot. Used to re-validate a session right before approval.
func (s *AvailabilityService) IsSlotAvailable(
	ctx context.Context,
	mentorID int64,
	date time.Time,
	startTime string,
	hours int,
) (bool, error) {
	slots, err := s.AvailableSlots(ctx, mentorID, date, hours)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if slot == startTime {
			return true, nil
		}
	}
	return false, nil
}

func (s *AvailabilityService) bookedSlots(
	ctx context.Context,
	mentorID int64,
	date time.Time,
) (map[string]struct{}, error) {
	sessions, err := s.sessions.ListByMentorAndDate(ctx, mentorID, date, activeSlotStatuses)
	if err != nil {
		return nil, err
	}

	booked := make(map[string]struct{})
	for _, session := range sessions {
		for i := 0; i < session.DurationHours; i++ {
			booked[AddHours(session.StartTime, i)] = struct{}{}
		}
	}
	return booked, nil
}

func overlapsBooked(slot string, hours int, booked map[string]struct{}) bool {
	for i := 0; i < hours; i++ {
		if _, taken := booked[AddHours(slot, i)]; taken {
			return true
		}
	}
	return false
}

// mergeSlots unions slot labels and sorts them. HH:MM labels order the same
// lexicographically as chronologically.
func mergeSlots(groups ...[]string) []string {
	seen := make(map[string]struct{})
	merged := make([]string, 0)
	for _, group := range groups {
		for _, slot := range group {
			if _, ok := seen[slot]; ok {
				continue
			}
			seen[slot] = struct{}{}
			merged = append(merged, slot)
		}
	}
	sort.Strings(merged)
	return merged
}

// AddHours shifts an HH:MM slot label forward by whole hours.
func AddHours(slot string, hours int) string {
	if len(slot) < 5 {
		return slot
	}
	hour, err := strconv.Atoi(slot[:2])
	if err != nil {
		return slot
	}
	return fmt.Sprintf("%02d:%s", hour+hours, slot[3:5])
}

// ValidSlotLabel accepts HH:MM labels on the 24-hour clock.
func ValidSlotLabel(slot string) bool {
	if len(slot) != 5 || slot[2] != ':' {
		return false
	}
	hour, err := strconv.Atoi(slot[:2])
	if err != nil {
		return false
	}
	minute, err := strconv.Atoi(slot[3:])
	if err != nil {
		return false
	}
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}
