package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apptlog/internal/appointment"
	"apptlog/internal/config"
	"apptlog/internal/csvlog"
	"apptlog/internal/ics"
	appLog "apptlog/internal/log"
	"apptlog/internal/remind"
	"apptlog/internal/web"
)

const usage = `usage: apptlog [-config path] [-log-level level] <command> [flags]

commands:
  submit   record an appointment (-day, -time, -meridiem, -reason)
  serve    run the HTTP API (and the reminder schedule, if configured)
  remind   scan the log for due appointments (-once for a single scan)
  export   write the log as an iCalendar file (-o path, default stdout)
`

// globalFlags holds flags that precede the subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

// app bundles what every subcommand needs.
type app struct {
	cfg *config.Config
	loc *time.Location
	log *csvlog.Log
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defer appLog.Sync()

	gf, rest, err := parseGlobalFlags(args, stderr)
	if err != nil {
		return 2
	}
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.Load(gf.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", gf.configPath)
		return 1
	}
	if gf.logLevel != "" {
		cfg.LogLevel = gf.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("failed to load timezone", err, "timezone", cfg.Timezone)
		return 1
	}

	a := &app{cfg: cfg, loc: loc, log: csvlog.New(cfg.LogFile)}

	appLog.Debug("effective config",
		"log_file", cfg.LogFile,
		"timezone", loc.String(),
		"listen", cfg.Listen,
		"remind", cfg.RemindCron,
		"remind_ahead_days", cfg.RemindAheadDays,
	)

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "submit":
		return a.submit(cmdArgs, stdout, stderr)
	case "serve":
		return a.serve(cmdArgs, stderr)
	case "remind":
		return a.remind(cmdArgs, stderr)
	case "export":
		return a.export(cmdArgs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}
}

func parseGlobalFlags(args []string, stderr io.Writer) (globalFlags, []string, error) {
	var gf globalFlags

	fs := flag.NewFlagSet("apptlog", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.StringVar(&gf.configPath, "config", "apptlog.yaml", "Path to config file")
	fs.StringVar(&gf.logLevel, "log-level", "", "Log level: debug, info, error (overrides config if set)")

	if err := fs.Parse(args); err != nil {
		return gf, nil, err
	}
	return gf, fs.Args(), nil
}

func (a *app) submit(args []string, stdout, stderr io.Writer) int {
	var (
		day      string
		timeText string
		meridiem string
		reason   string
	)
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&day, "day", "", "Weekday: name, abbreviation, or 0-6 (0 = Monday)")
	fs.StringVar(&timeText, "time", "", "Time as H or H:MM (e.g. 9:30)")
	fs.StringVar(&meridiem, "meridiem", "AM", "AM or PM")
	fs.StringVar(&reason, "reason", "", "Reason for the appointment")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	weekday, err := appointment.ParseWeekday(day)
	if err != nil {
		fmt.Fprintln(stderr, appointment.Message(err))
		return 2
	}

	sub := appointment.NewSubmitter(a.log, a.loc)
	rec, err := sub.Submit(appointment.Input{
		Weekday:  weekday,
		TimeText: timeText,
		Meridiem: appointment.Meridiem(meridiem),
		Reason:   reason,
	})
	switch {
	case err == nil:
		fmt.Fprintf(stdout, "%s %s %s\n", rec.Date.Format("2006-01-02"), rec.Day, rec.Time)
		return 0
	case errors.Is(err, appointment.ErrNoWeekdaySelected):
		// Same as pressing Submit with no day chosen: nothing happens.
		return 0
	case errors.Is(err, appointment.ErrInvalidTime), errors.Is(err, appointment.ErrInvalidInput):
		fmt.Fprintln(stderr, appointment.Message(err))
		return 2
	default:
		appLog.Error("failed to record appointment", err, "log_file", a.cfg.LogFile)
		return 1
	}
}

func (a *app) serve(args []string, stderr io.Writer) int {
	var listen string
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if listen != "" {
		a.cfg.Listen = listen
	}

	ctx, cancel := signalContext()
	defer cancel()

	if a.cfg.RemindCron != "" {
		r := remind.New(a.log, a.loc, a.cfg.RemindAheadDays)
		go func() {
			if err := r.Start(ctx, a.cfg.RemindCron); err != nil {
				appLog.Error("reminder scheduler failed", err, "schedule", a.cfg.RemindCron)
			}
		}()
	}

	sub := appointment.NewSubmitter(a.log, a.loc)
	srv := web.NewServer(a.cfg, sub, a.log, a.loc)
	if err := srv.Run(ctx); err != nil {
		appLog.Error("HTTP server failed", err, "listen", a.cfg.Listen)
		return 1
	}
	return 0
}

func (a *app) remind(args []string, stderr io.Writer) int {
	var once bool
	fs := flag.NewFlagSet("remind", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&once, "once", false, "Scan once and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	r := remind.New(a.log, a.loc, a.cfg.RemindAheadDays)
	if once {
		n, err := r.RunOnce()
		if err != nil {
			appLog.Error("reminder scan failed", err, "log_file", a.cfg.LogFile)
			return 1
		}
		appLog.Info("reminder scan completed", "due", n)
		return 0
	}

	ctx, cancel := signalContext()
	defer cancel()
	if err := r.Start(ctx, a.cfg.RemindCron); err != nil {
		appLog.Error("reminder scheduler failed", err, "schedule", a.cfg.RemindCron)
		return 1
	}
	return 0
}

func (a *app) export(args []string, stdout, stderr io.Writer) int {
	var out string
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&out, "o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	records, err := a.log.ReadAll(a.loc)
	if err != nil {
		appLog.Error("failed to read appointment log", err, "log_file", a.cfg.LogFile)
		return 1
	}

	body := ics.Export(records, ics.ExportOptions{
		Location: a.loc,
		Duration: a.cfg.EventDuration(),
	})

	if out == "" {
		_, _ = io.WriteString(stdout, body)
		return 0
	}
	if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
		appLog.Error("failed to write calendar", err, "path", out)
		return 1
	}
	appLog.Info("calendar exported", "path", out, "events", len(records))
	return 0
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
