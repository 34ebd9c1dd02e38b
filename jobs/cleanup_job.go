package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TokenCleaner removes refresh tokens that can no longer be used
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// CleanupJob periodically purges expired and revoked refresh tokens
type CleanupJob struct {
	tokens   TokenCleaner
	interval time.Duration
	log      zerolog.Logger

	stopChan chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewCleanupJob creates a new cleanup job
func NewCleanupJob(tokens TokenCleaner, interval time.Duration, log zerolog.Logger) *CleanupJob {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &CleanupJob{
		tokens:   tokens,
		interval: interval,
		log:      log.With().Str("job", "token_cleanup").Logger(),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the cleanup job; it runs until ctx ends or Stop is called
func (j *CleanupJob) Start(ctx context.Context) {
	go j.run(ctx)
	j.log.Info().Dur("interval", j.interval).Msg("🚀 Token cleanup job started")
}

// Stop stops the cleanup job and waits for the current run to finish
func (j *CleanupJob) Stop() {
	j.once.Do(func() { close(j.stopChan) })
	<-j.done
	j.log.Info().Msg("🛑 Token cleanup job stopped")
}

func (j *CleanupJob) run(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce(ctx)
		case <-ctx.Done():
			return
		case <-j.stopChan:
			return
		}
	}
}

// RunOnce performs a single cleanup pass
func (j *CleanupJob) RunOnce(ctx context.Context) {
	removed, err := j.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("❌ Token cleanup failed")
		return
	}
	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("🧹 Expired refresh tokens removed")
	}
}
