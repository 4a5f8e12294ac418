/*
Package config loads the settings of a flowcanvas server.

# Overview

Settings are resolved in three layers, later ones winning:

 1. Default()
 2. an optional YAML or JSON file, read through Config
 3. FLOWCANVAS_* environment variables, optionally from a .env file

The result is checked by Settings.Validate before use:

	s, err := config.Load("flowcanvas.yaml")
	if err != nil {
	    log.Fatal(err)
	}

# Config

Config wraps a decoded document and returns typed values with defaults.
Dotted keys walk nested maps:

	cfg, _ := config.FromYAML(data)
	backend := cfg.String("store.backend", "memory")
	timeout := cfg.Duration("store.timeout", 5*time.Second)

Durations accept "30s"-style strings or numbers of seconds.

# Environment

	FLOWCANVAS_STORE_BACKEND    memory | sqlite | redis
	FLOWCANVAS_SQLITE_PATH      file path or :memory:
	FLOWCANVAS_REDIS_URL        redis://host:port/db
	FLOWCANVAS_REDIS_PREFIX     key prefix
	FLOWCANVAS_FLOW_KEY         store key of the saved flow
	FLOWCANVAS_STORE_TIMEOUT    e.g. 5s
	FLOWCANVAS_LISTEN_ADDR      e.g. :8080
	FLOWCANVAS_SHUTDOWN_TIMEOUT e.g. 10s
	FLOWCANVAS_LOG_LEVEL        debug | info | warn | error
	FLOWCANVAS_LOG_FORMAT       json | console
	FLOWCANVAS_METRICS          true | false
	FLOWCANVAS_TRACING          true | false
*/
package config
