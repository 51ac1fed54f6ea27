package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"RelativeStrength/internal/model"
	"RelativeStrength/internal/notifier"

	"github.com/robfig/cron/v3"
)

// Runner produces scan reports.
type Runner interface {
	Run(ctx context.Context, now time.Time) (*model.Report, error)
	Last() *model.Report
}

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs scans on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier Sender
	Calendar *TradingCalendar
	Ctx      context.Context
	Now      func() time.Time
	// OnReport is called after every successful scan.
	OnReport func(*model.Report)

	running sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, sender Sender, cal *TradingCalendar) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: sender,
		Calendar: cal,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// Register adds the scan task on a six-field cron expression.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a scan immediately regardless of the calendar.
func (s *Scheduler) RunNow() (*model.Report, error) {
	if !s.running.TryLock() {
		return nil, fmt.Errorf("a scan is already running")
	}
	defer s.running.Unlock()

	report, err := s.Runner.Run(s.Ctx, s.Now())
	if err != nil {
		return nil, err
	}
	if s.OnReport != nil {
		s.OnReport(report)
	}
	return report, nil
}

func (s *Scheduler) scanTask() {
	now := s.Now()
	if s.Calendar != nil && !s.Calendar.IsTradingDay(now) {
		log.Printf("[INFO] %s is not a trading day, scan skipped", now.Format("2006-01-02"))
		return
	}
	log.Println("[INFO] running scheduled scan")
	report, err := s.RunNow()
	if err != nil {
		log.Printf("[ERROR] scheduled scan: %v", err)
		s.trySend(notifier.FormatError(err))
		return
	}
	s.trySend(notifier.FormatReport(report))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	// Group chats address commands as /rank@BotName.
	if i := strings.IndexByte(command, '@'); i > 0 {
		command = command[:i]
	}
	switch strings.ToLower(command) {
	case "/rank":
		report, err := s.RunNow()
		if err != nil {
			log.Printf("[ERROR] command scan: %v", err)
			return notifier.FormatError(err)
		}
		return notifier.FormatReport(report)
	case "/last":
		report := s.Runner.Last()
		if report == nil {
			return "No scan has completed yet. Send /rank to run one."
		}
		return notifier.FormatReport(report)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
