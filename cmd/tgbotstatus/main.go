package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/template"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/BeastBots/TgBotStatus/internal/config"
	"github.com/BeastBots/TgBotStatus/internal/meta"
	"github.com/BeastBots/TgBotStatus/internal/monitor"
	"github.com/BeastBots/TgBotStatus/internal/probe"
	"github.com/BeastBots/TgBotStatus/internal/publish"
	"github.com/BeastBots/TgBotStatus/internal/report"
	"github.com/BeastBots/TgBotStatus/internal/schedule"
	"github.com/BeastBots/TgBotStatus/internal/transport"
)

//go:embed help.txt
var helpText string

type StatusCommand struct {
	OutStream io.Writer
	ErrStream io.Writer

	ConfigPath   string
	ScheduleSpec string
	MaxRetries   int
	ShowVersion  bool
	ShowHelp     bool

	Schedule schedule.Schedule
}

func (cmd *StatusCommand) PrintUsage() {
	tmpl := template.Must(template.New("help.txt").Parse(helpText))
	tmpl.Execute(cmd.ErrStream, map[string]interface{}{
		"Version": meta.Version,
	})
}

func (cmd *StatusCommand) PrintVersion() {
	fmt.Fprintf(cmd.OutStream, "TgBotStatus version %s (%s)\n", meta.Version, meta.Commit)
}

func (cmd *StatusCommand) ParseArgs(args []string) (exitCode int) {
	flags := pflag.NewFlagSet("tgbotstatus", pflag.ContinueOnError)
	flags.SetOutput(cmd.ErrStream)

	flags.StringVarP(&cmd.ConfigPath, "config", "c", "config.json", "Path to config.json")
	flags.StringVarP(&cmd.ScheduleSpec, "schedule", "s", "", "Re-run check cycles on this schedule")
	flags.IntVarP(&cmd.MaxRetries, "max-retries", "r", 0, "Cap retries per destination on rate limits")
	flags.BoolVarP(&cmd.ShowVersion, "version", "v", false, "Show version")
	flags.BoolVarP(&cmd.ShowHelp, "help", "h", false, "Show help message")

	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s -h` for more information.\n", args[0])
		return 2
	}

	if cmd.ShowVersion || cmd.ShowHelp {
		return 0
	}

	if len(flags.Args()) > 0 {
		fmt.Fprintf(cmd.ErrStream, "unexpected argument: %s\n", flags.Args()[0])
		return 2
	}

	if cmd.ScheduleSpec != "" {
		var err error
		cmd.Schedule, err = schedule.Parse(cmd.ScheduleSpec)
		if err != nil {
			fmt.Fprintf(cmd.ErrStream, "invalid schedule %q: %s\n", cmd.ScheduleSpec, err)
			return 2
		}
	}

	return 0
}

func newLogger() *zap.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return zap.Must(zap.NewDevelopment())
	}
	return zap.Must(zap.NewProduction())
}

func (cmd *StatusCommand) Run(args []string) (exitCode int) {
	if code := cmd.ParseArgs(args); code != 0 {
		return code
	}

	if cmd.ShowVersion {
		cmd.PrintVersion()
		return 0
	}

	if cmd.ShowHelp {
		cmd.PrintUsage()
		return 0
	}

	logger := newLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.FetchRemote(ctx, logger)

	env, err := config.LoadEnv(logger)
	if err != nil {
		logger.Error("failed to load environment", zap.Error(err))
		return 1
	}

	conf, err := config.Load(cmd.ConfigPath, logger)
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	tr := transport.NewTelegram(transport.TelegramOptions{
		APIID:       env.APIID,
		APIHash:     env.APIHash,
		SessionFile: env.SessionFile,
		Logger:      logger,
	})

	pub := publish.New(tr, conf.Destinations, logger.Named("publish"))
	pub.MediaURL = env.MediaURL
	pub.Buttons = env.Buttons
	pub.MaxRetries = cmd.MaxRetries

	mon := monitor.New(
		conf,
		probe.New(tr, logger.Named("probe")),
		report.New(env.Header, env.Footer, env.Location),
		pub,
		logger.Named("monitor"),
	)

	err = tr.Run(ctx, func(ctx context.Context) error {
		mon.RunCycle(ctx)

		for cmd.Schedule != nil {
			next := cmd.Schedule.Next(time.Now())
			logger.Info("next check cycle scheduled", zap.Time("at", next))

			select {
			case <-time.After(time.Until(next)):
			case <-ctx.Done():
				return ctx.Err()
			}

			mon.RunCycle(ctx)
		}

		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("fatal error", zap.Error(err))
		return 1
	}

	return 0
}

func main() {
	cmd := &StatusCommand{
		OutStream: os.Stdout,
		ErrStream: os.Stderr,
	}
	os.Exit(cmd.Run(os.Args))
}
