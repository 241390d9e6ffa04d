// Package config loads and validates portfolio-admin configuration.
//
// Configuration is YAML with ${VAR} environment variable expansion applied
// to the raw file before parsing:
//
//	database:
//	  path: ${PORTFOLIO_DATA_DIR}/admin.db
//
//	logging:
//	  level: info    # debug, info, warn, error
//	  format: text   # text (colorized), json
//
//	bootstrap:
//	  disabled: false
//
//	audit:
//	  disabled: false
//
// database.path is the only required field. Validation reports the first
// failure encountered.
package config
