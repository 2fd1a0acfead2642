// Package config loads the trylite driver configuration.
//
// A YAML file is read on top of Default after any dotenv files have been
// loaded into the environment. ${VAR} references must resolve or Load fails
// with ErrMissingEnv; $$ escapes a dollar sign. TRYLITE_MAX_RETRIES,
// TRYLITE_BASE_UNIT and TRYLITE_LOG_LEVEL override the file.
//
//	retry:
//	  max_retries: 3
//	  base_unit: 1s
//	demo:
//	  strategy: retry
//	  failure_rate: 0.5
//	observe:
//	  service_name: trylite
//	  logging:
//	    enabled: true
//	    level: info
package config
