package config

const (
	defaultDataDir            = "~/.local/share/steeple"
	defaultLogDir             = "~/.local/share/steeple/logs"
	defaultPublishingBaseURL  = "https://api.planningcenteronline.com"
	defaultCatalogBaseURL     = "https://www.googleapis.com"
	defaultMarkerPhrase       = "Sunday Service"
	defaultLivePollSeconds    = 10
	defaultLivePollAttempts   = 30
	defaultScheduleWeekday    = "Sunday"
	defaultScheduleAnchorDate = "2025-08-31"
	defaultScheduleStartTime  = "13:45"
	defaultLookupDelayMS      = 500
	defaultSearchDelayMS      = 1000
	defaultCreateDelayMS      = 2000
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Publishing: Publishing{
			BaseURL: defaultPublishingBaseURL,
		},
		VideoCatalog: VideoCatalog{
			BaseURL:          defaultCatalogBaseURL,
			MarkerPhrase:     defaultMarkerPhrase,
			LivePollSeconds:  defaultLivePollSeconds,
			LivePollAttempts: defaultLivePollAttempts,
		},
		Schedule: Schedule{
			Weekday:    defaultScheduleWeekday,
			AnchorDate: defaultScheduleAnchorDate,
			StartTime:  defaultScheduleStartTime,
		},
		Pacing: Pacing{
			LookupDelayMS: defaultLookupDelayMS,
			SearchDelayMS: defaultSearchDelayMS,
			CreateDelayMS: defaultCreateDelayMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
