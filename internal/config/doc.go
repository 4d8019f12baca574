// Bookshelf - Collaborative Filtering Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookshelf

/*
Package config loads and validates application configuration.

Configuration is layered with Koanf v2. Later layers override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, config.yaml, config.yml, /etc/bookshelf/config.yaml)
 3. Environment variables mapped through an explicit table

Unmapped environment variables are ignored so unrelated process variables
never leak into the configuration.

# Sections

  - server: HTTP listener and environment name
  - logging: zerolog level, format and caller info
  - security: CORS, rate limiting and the admin JWT secret
  - sources: where the books, ratings and users tables come from
  - recommend: snapshot build schedule and query defaults
  - events: rebuild and snapshot notifications over Watermill

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("invalid configuration")
	}
	engineCfg := cfg.Recommend.EngineConfig(cfg.Sources.RowCap)
*/
package config
