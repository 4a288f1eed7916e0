package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/player/chat"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/google/uuid"
	"github.com/oomph-ac/phaser/game"
	"github.com/oomph-ac/phaser/host"
	"github.com/oomph-ac/phaser/phase"
	"github.com/oomph-ac/phaser/scheduler"
	"github.com/oomph-ac/phaser/settings"
	"github.com/oomph-ac/phaser/worker"
	"github.com/sirupsen/logrus"
)

// The following program runs a dragonfly server in which players moving fast enough are phased through
// terrain until they slow down again.
func main() {
	path := flag.String("settings", "phaser.toml", "path of the settings file")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	s, err := settings.Load(*path)
	if err != nil {
		log.Fatalf("unable to load settings: %v", err)
	}
	conf, err := s.Config()
	if err != nil {
		log.Fatalf("invalid settings: %v", err)
	}

	if s.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: s.Sentry.DSN}); err != nil {
			log.Errorf("unable to initialize sentry: %v", err)
		}
		defer sentry.Flush(time.Second * 2)
	}
	if addr := s.Stats.Address; addr != "" || os.Getenv("PPROF_ENABLED") != "" {
		if addr == "" {
			addr = "localhost:8080"
		}
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(addr))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	chat.Global.Subscribe(chat.StdoutSubscriber{})
	srvConf, err := server.DefaultConfig().Config(slog.Default())
	if err != nil {
		log.Fatalf("unable to create server config: %v", err)
	}
	srv := srvConf.New()
	srv.Listen()

	pool := worker.NewPool(0)
	defer pool.Close()

	sched := scheduler.New(log)
	h := host.New(log)
	opts := []phase.Option{
		phase.WithConfig(conf),
		phase.WithLogger(log),
		phase.WithEndEffects(host.NewMessageEffects(log)),
		phase.WithDispatcher(pool),
	}
	if s.HUD.Enabled {
		opts = append(opts, phase.WithFeedback(host.HUDFactory(sched, s.HUD.Interval)))
	}
	machine := phase.New(h, sched, opts...)

	watcher, err := settings.Watch(*path, log, func(s settings.Settings) {
		conf, err := s.Config()
		if err == nil {
			err = machine.UpdateConfig(conf)
		}
		if err != nil {
			log.Warnf("settings not applied: %v", err)
			return
		}
		log.Infof("settings reloaded from %s", *path)
	})
	if err != nil {
		log.Warnf("unable to watch settings, hot reloading disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	sched.RunEvery(func() {
		phasing := 0
		for _, rec := range machine.Records() {
			if rec.State == phase.StatePhasing {
				phasing++
			}
		}
		log.WithField("phasing", phasing).Debugf("phase stats: %+v", machine.Stats())
	}, 60*game.TicksPerSecond)

	driver := host.NewDriver(srv.World(), h, sched, host.Callbacks{
		Join: func(p *host.Participant) { machine.Join(p) },
		Quit: func(id uuid.UUID) { machine.Quit(id) },
		Stop: machine.Close,
	})
	machine.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		driver.Run(ctx)
		if err := srv.Close(); err != nil {
			log.Errorf("unable to close server: %v", err)
		}
	}()

	for p := range srv.Accept() {
		h.Add(p)
	}
	log.Info("server closed")
}
