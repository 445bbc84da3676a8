package scheduler

import (
	"context"
	"time"

	"github.com/matdori/matdori-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// 한 번에 재시도할 고아 첨부파일 수
const orphanBatchSize = 100

type OrphanCleaner interface {
	CleanupOrphans(ctx context.Context, limit int) (int, error)
}

type SessionSweeper interface {
	Sweep() int
}

type CodeSweeper interface {
	Sweep(now time.Time) int
}

// HousekeepingScheduler 만료 세션/인증번호 정리 및 고아 첨부파일 삭제 재시도
type HousekeepingScheduler struct {
	cron     *cron.Cron
	spec     string
	orphans  OrphanCleaner
	sessions SessionSweeper
	codes    CodeSweeper
	timeout  time.Duration
}

func NewHousekeepingScheduler(spec string, orphans OrphanCleaner, sessions SessionSweeper, codes CodeSweeper) *HousekeepingScheduler {
	return &HousekeepingScheduler{
		cron:     cron.New(),
		spec:     spec,
		orphans:  orphans,
		sessions: sessions,
		codes:    codes,
		timeout:  time.Minute,
	}
}

// Start 스케줄러 시작
func (s *HousekeepingScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add housekeeping cron job", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Housekeeping scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce runs every housekeeping task once.
func (s *HousekeepingScheduler) RunOnce() {
	fields := map[string]interface{}{}

	if s.sessions != nil {
		fields["expired_sessions"] = s.sessions.Sweep()
	}
	if s.codes != nil {
		fields["expired_codes"] = s.codes.Sweep(time.Now())
	}
	if s.orphans != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		removed, err := s.orphans.CleanupOrphans(ctx, orphanBatchSize)
		cancel()
		if err != nil {
			logger.Error("Orphaned attachment cleanup incomplete", err, map[string]interface{}{
				"removed": removed,
			})
		}
		fields["removed_orphans"] = removed
	}

	logger.Info("Housekeeping finished", fields)
}

// Stop 스케줄러 중지. 실행 중인 작업이 끝날 때까지 기다린다.
func (s *HousekeepingScheduler) Stop() {
	logger.Info("Stopping housekeeping scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Housekeeping scheduler stopped", nil)
}
