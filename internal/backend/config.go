package backend

import (
	"fmt"

	"fteboard/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	sourceType := SourceType(appConfig.ImportSource)
	if !sourceType.IsValid() {
		return Config{}, fmt.Errorf("invalid import source in config: %s", appConfig.ImportSource)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Source:    sourceType,
		SeedPath:  appConfig.ImportSeedPath,
		XLSXPath:  appConfig.ImportXLSXPath,
		XLSXSheet: appConfig.ImportXLSXSheet,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleTimesheetSheet:     appConfig.GoogleTimesheetSheet,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,

		HolidayCountry: appConfig.HolidayCountry,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}

	if !c.Source.IsValid() {
		return fmt.Errorf("invalid import source: %s", c.Source)
	}
	switch c.Source {
	case GoogleSource:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for google source")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for google source")
		}
	case XLSXSource:
		if c.XLSXPath == "" {
			return fmt.Errorf("workbook path is required for xlsx source")
		}
	}

	if len(c.HolidayCountry) != 2 {
		return fmt.Errorf("invalid holiday country: %q", c.HolidayCountry)
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
