package main

import (
	_ "embed"
	"flag"
	"os"
	"strings"

	"statusrelay/pkg/config"
	"statusrelay/pkg/contact"
	"statusrelay/pkg/log"
	"statusrelay/pkg/monitor"
	"statusrelay/pkg/probe"
	"statusrelay/pkg/server"
)

//go:embed VERSION
var Version string

func main() {
	// Initialize logger first
	_ = log.Logger

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	envUpstream, usedDefault := cfg.Upstream()

	backend := flag.String("backend", envUpstream, "Upstream backend base URL (overrides BACKEND_URL / REACT_APP_BACKEND_URL)")
	addr := flag.String("addr", cfg.Addr(":8080"), "Listen address")
	probeTimeout := flag.Duration("probe-timeout", cfg.ProbeTimeout, "Upstream probe timeout")
	watchInterval := flag.Duration("watch-interval", cfg.WatchInterval, "Background watcher interval (0 disables the watcher)")
	dbPath := flag.String("db", cfg.ContactDB, "SQLite database path for contact submissions (enables persistence)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.SetDebugMode()
		log.Debug().Msg("Debug mode enabled")
	}

	upstream := config.Normalize(*backend)
	if err := config.ValidateURL(upstream); err != nil {
		log.Fatal().Str("backend", upstream).Err(err).Msg("Invalid backend URL")
	}
	if usedDefault && upstream == config.DefaultBackendURL {
		log.Warn().
			Str("backend", upstream).
			Msg("No backend URL configured, falling back to the default upstream")
	}

	prober := probe.New(*probeTimeout)

	var watcher *monitor.Watcher
	if *watchInterval > 0 {
		watcher = monitor.New(upstream, prober, *watchInterval)
	}

	var contacts *contact.Store
	if *dbPath != "" {
		contacts, err = contact.NewStore(*dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("db", *dbPath).Msg("Failed to open contact store")
		}
	}

	log.Info().
		Str("upstream", upstream).
		Dur("probe_timeout", *probeTimeout).
		Dur("watch_interval", *watchInterval).
		Bool("contact_store", contacts != nil).
		Msg("Configured upstream")

	srv := server.New(upstream, strings.TrimSpace(Version), prober, watcher, contacts)
	if err := srv.Start(*addr); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	os.Exit(0)
}
