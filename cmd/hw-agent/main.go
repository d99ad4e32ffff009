package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"healthwatch/internal/agent"
)

func main() {
	configPath := flag.String("config", "./agent.yaml", "path to agent config yaml")
	once := flag.Bool("once", false, "run one check cycle and exit")
	flag.Parse()

	log := logrus.New()

	a, err := agent.New(*configPath, log)
	if err != nil {
		log.Fatal(err)
	}
	if lvl, lerr := logrus.ParseLevel(a.Cfg.Logging.Level); lerr == nil {
		log.SetLevel(lvl)
	}

	log.Infof("hw-agent ready, machine_id=%s server=%s", a.MachineID, a.Cfg.Server.URL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := a.ReportNow(ctx); err != nil {
			log.Errorf("cycle failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
	log.Info("shutting down")
}
