package meetings

import (
	"context"
	"errors"
	"sort"

	"roombook/backend/internal/domain"
	"roombook/backend/internal/service"
	"roombook/backend/internal/store"
)

type HistoryQuery struct {
	PersonID int64
	Title    string
	RoomName string
	// Status filters on the derived display status when set.
	Status      *domain.DisplayStatus
	SortByStart bool
}

func (s *Service) History(ctx context.Context, q HistoryQuery) ([]domain.HistoryRow, error) {
	if err := s.checkPerson(ctx, q.PersonID); err != nil {
		return nil, err
	}
	if q.Status != nil && !q.Status.Valid() {
		return nil, service.BusinessRule("Status meeting from 0 to 3")
	}

	rows, err := s.repo.BookingHistory(ctx, store.HistoryQuery{
		PersonID: q.PersonID,
		Title:    q.Title,
		RoomName: q.RoomName,
	})
	if err != nil {
		return nil, service.Internal("booking history", err)
	}

	now := s.clock.Now()
	out := make([]domain.HistoryRow, 0, len(rows))
	for _, row := range rows {
		row = row.WithStatus(now)
		if q.Status != nil && row.Status != *q.Status {
			continue
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, service.BusinessRule("No matching results found")
	}

	sort.SliceStable(out, func(i, j int) bool {
		if q.SortByStart {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ReservationTime.Before(out[j].ReservationTime)
	})
	return out, nil
}

func (s *Service) Get(ctx context.Context, personID, meetingID int64) (domain.HistoryRow, error) {
	if err := s.checkPerson(ctx, personID); err != nil {
		return domain.HistoryRow{}, err
	}
	if meetingID <= 0 {
		return domain.HistoryRow{}, service.BusinessRule("Meeting ID does not exist.")
	}
	if _, err := s.repo.FindMeeting(ctx, meetingID); errors.Is(err, store.ErrNotFound) {
		return domain.HistoryRow{}, service.BusinessRule("Meeting ID does not exist.")
	} else if err != nil {
		return domain.HistoryRow{}, service.Internal("find meeting", err)
	}

	row, err := s.repo.MeetingForPerson(ctx, personID, meetingID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.HistoryRow{}, service.BusinessRule("No matching results found")
	}
	if err != nil {
		return domain.HistoryRow{}, service.Internal("meeting for person", err)
	}
	return row.WithStatus(s.clock.Now()), nil
}

func (s *Service) checkPerson(ctx context.Context, personID int64) error {
	if personID <= 0 {
		return service.BusinessRule("User ID is incorrect.")
	}
	_, err := s.repo.FindPerson(ctx, personID)
	if errors.Is(err, store.ErrNotFound) {
		return service.BusinessRule("User ID is incorrect.")
	}
	return service.Internal("find person", err)
}
