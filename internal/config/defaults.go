package config

const (
	defaultLogDir             = "~/.local/share/digitarr/logs"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBLanguage       = "en-US"
	defaultSourceProvider     = "tmdb"
	defaultSourceRegion       = "US"
	defaultRequestTimeout     = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultFilterExcludeAdult = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Source: Source{
			Provider: defaultSourceProvider,
			Region:   defaultSourceRegion,
		},
		Overseerr: Overseerr{
			RequestTimeout: defaultRequestTimeout,
		},
		Riven: Riven{
			RequestTimeout: defaultRequestTimeout,
		},
		Filters: Filters{
			ExcludeAdult: defaultFilterExcludeAdult,
		},
		Discord: Discord{
			RequestTimeout: defaultRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
