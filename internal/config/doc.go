// Package config loads the survey backend's configuration from environment
// variables.
//
//	cfg, err := config.Load()
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS)
//   - DatabaseConfig: SurrealDB connection settings
//   - StorageConfig: backend for the form slot, archive and markers
//   - SheetsConfig: remote spreadsheet receiver
//   - SubmissionConfig: submit flow switches
//   - ReceiverConfig: the dev sheet receiver
//
// # Environment Variables
//
//	SERVER_PORT             - HTTP server port (default: 8080)
//	SERVER_ENV              - development, production or test
//	CORS_ALLOWED_ORIGINS    - comma separated origins
//	TRUSTED_PROXIES         - comma separated proxy IPs or CIDRs whose
//	                          X-Forwarded-For is honored (default: none)
//	STORAGE_BACKEND         - memory, file or surrealdb (default: file)
//	STORAGE_DIR             - directory for the file backend (default: ./data)
//	DB_HOST, DB_PORT        - SurrealDB address
//	DB_NAMESPACE, DB_DATABASE, DB_USER, DB_PASSWORD
//	SHEETS_ENDPOINT_URL     - receiver URL (default: the deployed sheet)
//	SHEETS_TIMEOUT          - HTTP client timeout, 0 for none
//	SUBMIT_REQUIRE_COMPLETE - reject submits with incomplete sections
//	ARCHIVE_MAX_SUBMISSIONS - local archive cap (default: 1000)
//	RECEIVER_PORT           - dev receiver port (default: 8090)
//	RECEIVER_BACKEND        - memory or surrealdb
package config
