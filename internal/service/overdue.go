package service

import (
	"context"
	"time"
)

// SweepOverdue marks pending and partial debts with a past due date as
// overdue and notifies each affected owner by email. The status write is a
// single statement; a failed notification never undoes the sweep.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	flagged, err := s.repo.MarkOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	total := 0
	for userID, count := range flagged {
		total += count
		user, err := s.repo.FindUserByID(ctx, userID)
		if err != nil {
			s.log.Errorf("Overdue sweep: failed to load user %d: %v", userID, err)
			continue
		}
		if err := s.mailer.SendOverdueNotice(user.Email, user.Username, count); err != nil {
			s.log.Errorf("Overdue sweep: notification to %s failed: %v", user.Email, err)
		}
	}

	if total > 0 {
		s.log.Infof("Overdue sweep flagged %d debts across %d users", total, len(flagged))
	}
	return total, nil
}
