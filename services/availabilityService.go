package services

import (
	"Samagra/models"
	"Samagra/repositories"
	"Samagra/utils"
	"context"
)

// IsAvailable reports whether [start,end) on date is free in doctorID's
// calendar.
func (s *AppointmentService) IsAvailable(ctx context.Context, doctorID, date, start, end string) (available bool, err error) {
	defer s.record("availability", &err)

	if doctorID == "" {
		return false, utils.Validationf("doctorId is required")
	}
	if err := utils.ValidateRange(date, start, end); err != nil {
		return false, err
	}
	return isAvailable(ctx, s.store, doctorID, date, start, end)
}

// isAvailable checks the candidate against every row of the doctor-day
// that still holds its slot. Rows whose id is in exclude are ignored.
func isAvailable(ctx context.Context, store repositories.AppointmentStore, doctorID, date, start, end string, exclude ...string) (bool, error) {
	existing, err := store.Reserved(ctx, doctorID, date)
	if err != nil {
		return false, err
	}
	return slotFree(existing, start, end, exclude...), nil
}

func slotFree(existing []models.Appointment, start, end string, exclude ...string) bool {
	for _, a := range existing {
		if !a.Reserves() || contains(exclude, a.ID) {
			continue
		}
		if utils.Overlaps(start, end, a.StartTime, a.EndTime) {
			return false
		}
	}
	return true
}

// ensureFree fails with a conflict when the candidate overlaps a booking.
func ensureFree(ctx context.Context, store repositories.AppointmentStore, doctorID, date, start, end string, exclude ...string) error {
	free, err := isAvailable(ctx, store, doctorID, date, start, end, exclude...)
	if err != nil {
		return err
	}
	if !free {
		return utils.Conflictf("slot %s %s-%s is not available", date, start, end)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
