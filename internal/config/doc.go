// Package config loads kata's configuration with Viper.
//
// Values come from config.yaml in the working directory or in
// $XDG_CONFIG_HOME/kata (overridable with KATA_CONFIG_DIR), and from
// KATA_-prefixed environment variables. Nested keys map to environment
// variables with dots replaced by underscores:
//
//	build:
//	  dist_dir: out    # KATA_BUILD_DIST_DIR=out
//	update:
//	  timeout: 5s      # KATA_UPDATE_TIMEOUT=5s
package config
