package worker

import (
	"context"
	"log"
	"time"

	"github.com/JasimIhsan/MentorsHub-sub000/internal/models"
)

type overdueSource interface {
	ListOverdue(ctx context.Context, before time.Time) ([]models.Session, error)
}

type sessionExpirer interface {
	Expire(ctx context.Context, sessionID int64) error
}

// ExpirySweeper periodically moves overdue sessions to expired. Sessions may
// be observed slightly past their real expiry between sweeps; callers that
// need exactness must also check the wall clock.
type ExpirySweeper struct {
	sessions overdueSource
	expirer  sessionExpirer
	interval time.Duration
	grace    time.Duration
}

func NewExpirySweeper(sessions overdueSource, expirer sessionExpirer, interval, grace time.Duration) *ExpirySweeper {
	return &ExpirySweeper{sessions: sessions, expirer: expirer, interval: interval, grace: grace}
}

func (w *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

func (w *ExpirySweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-w.grace)
	sessions, err := w.sessions.ListOverdue(ctx, cutoff)
	if err != nil {
		log.Printf("expiry sweep failed: %v", err)
		return
	}

	for _, session := range sessions {
		if err := w.expirer.Expire(ctx, session.ID); err != nil {
			// Another worker may have raced us to the transition.
			log.Printf("expire session %d: %v", session.ID, err)
		}
	}
}
