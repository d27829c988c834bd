package main

import (
	"errors"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

func loadResources(cfg *Config) (*ResourceMap, error) {
	if cfg.Dir == "" {
		return loadDefaultPages()
	}
	return LoadResources(os.DirFS(cfg.Dir))
}

func serve(cfg *Config, log zerolog.Logger) error {
	resources, err := loadResources(cfg)
	if err != nil {
		return err
	}
	log.Info().Int("pages", resources.Len()).Str("dir", cfg.Dir).Msg("resources loaded")

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ln.Close()
	}()

	d := NewDispatcher(cfg, resources, log)
	d.Start()
	return d.Serve(ln)
}

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		l := fallbackLogger()
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	log, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		l := fallbackLogger()
		l.Fatal().Err(err).Msg("invalid logging configuration")
	}
	if err := serve(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
