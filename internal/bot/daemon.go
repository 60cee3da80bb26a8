package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/chat"
	"github.com/judhveer/easternpanorama-office-taskbot/internal/config"
	"gorm.io/gorm"
)

// Daemon is the main bot process. It connects to a chat platform via an
// Adapter, pumps inbound events into the Engine, and runs the due-date
// reminder scheduler.
type Daemon struct {
	engine  *Engine
	adapter chat.Adapter
	cfg     *config.Config
	out     io.Writer
}

// DaemonOpts holds parameters for creating a new Daemon.
type DaemonOpts struct {
	DB      *gorm.DB
	Config  *config.Config
	Adapter chat.Adapter
	Out     io.Writer // defaults to os.Stdout
}

// NewDaemon creates a Daemon and its Engine.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bot: daemon: config is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	engine, err := NewEngine(EngineOpts{
		DB:          opts.DB,
		Adapter:     opts.Adapter,
		BossChannel: opts.Config.Roles.BossChannel,
		EAChannels:  opts.Config.Roles.EAChannels,
		Out:         out,
	})
	if err != nil {
		return nil, err
	}
	return &Daemon{
		engine:  engine,
		adapter: opts.Adapter,
		cfg:     opts.Config,
		out:     out,
	}, nil
}

// Engine exposes the daemon's engine, mainly for tests.
func (d *Daemon) Engine() *Engine {
	return d.engine
}

// Run connects the adapter and blocks pumping inbound events until the
// context is cancelled. On shutdown it closes the adapter gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Taskbot connecting...\n")
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("bot: connect: %w", err)
	}

	inbound, err := d.adapter.Listen(ctx)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bot: listen: %w", err)
	}

	go d.runReminderScheduler(ctx)

	fmt.Fprintf(d.out, "Taskbot online\n")

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "Taskbot shutting down...\n")
			if err := d.adapter.Close(); err != nil {
				log.Printf("bot: close adapter: %v", err)
			}
			fmt.Fprintf(d.out, "Taskbot stopped\n")
			return nil
		case ev, ok := <-inbound:
			if !ok {
				fmt.Fprintf(d.out, "Taskbot inbound stream closed\n")
				if err := d.adapter.Close(); err != nil {
					log.Printf("bot: close adapter: %v", err)
				}
				return nil
			}
			d.engine.Handle(ctx, ev)
		}
	}
}

// runReminderScheduler fires SendDueReminders on the configured cron
// expression. It returns immediately when no expression is configured.
func (d *Daemon) runReminderScheduler(ctx context.Context) {
	expr := d.cfg.ReminderCron
	if expr == "" {
		return
	}

	var timer *time.Timer
	if wait := nextCronDuration(expr); wait > 0 {
		timer = time.NewTimer(wait)
	} else {
		log.Printf("bot: invalid reminder cron %q; scheduler disabled", expr)
		return
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			sent, err := d.engine.SendDueReminders(ctx)
			if err != nil {
				log.Printf("bot: reminder run: %v", err)
			} else if sent > 0 {
				fmt.Fprintf(d.out, "Sent %d due-date reminders\n", sent)
			}
			if wait := nextCronDuration(expr); wait > 0 {
				timer.Reset(wait)
			}
		}
	}
}
