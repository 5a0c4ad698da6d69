// Package config loads csvaudit configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CSVAUDIT_<SECTION>_<FIELD>:
//
//	CSVAUDIT_DATA_DIR=/srv/cicids2017/raw
//	CSVAUDIT_DATA_PEEK_ROWS=10000
//	CSVAUDIT_SERVER_PORT=9090
//	CSVAUDIT_LOGGING_LEVEL=debug
//
// CSVAUDIT_CONFIG points at an explicit YAML file. Without it the loader
// looks for csvaudit.yaml in the working directory and in configs/.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests should start from config.Default(), which needs neither
// environment variables nor files.
package config
