// Package config loads the cursorpage configuration with Viper.
//
// A configuration file is optional; every key can also be set through the
// environment with the CURSORPAGE_ prefix, dots replaced by underscores
// (CURSORPAGE_PAGING_LIMIT, CURSORPAGE_DATA_MONGODB_MASTER_URI).
//
//	app_name: cursorpage
//	run_mode: release
//	logger:
//	  level: 4
//	  format: json
//	  output: stdout
//	data:
//	  mongodb:
//	    master:
//	      uri: mongodb://localhost:27017
//	    database: app
//	  redis:
//	    addr: localhost:6379
//	paging:
//	  limit: 50
//	  max_limit: 500
//	  ordering_field: _id
//	  ordering: desc
//	  response_format: default
//	  automatic_pagination: true
//	  cache_ttl: 30s
//	observes:
//	  tracer:
//	    endpoint: localhost:4317
//	    insecure: true
//	    sampling_rate: 0.1
//
// Paging.Defaults converts the paging section into paging.Defaults.
package config
