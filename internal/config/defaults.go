package config

const (
	defaultStateFile          = "~/.local/share/mural/state.json"
	defaultActivationLog      = "~/.local/share/mural/applied.log"
	defaultLogDir             = "~/.local/share/mural/logs"
	defaultSocketPath         = "~/.local/share/mural/murald.sock"
	defaultTrashDir           = "~/.local/share/mural/trash"
	defaultSortMethod         = "Most Recent"
	defaultNumPerPage         = 100
	defaultMaxPages           = 10
	defaultMinCandidates      = 40
	defaultMaxAttemptsPerRun  = 3
	defaultKeepLastN          = 5
	defaultInterval           = "90m"
	defaultDetectInterval     = "5m"
	defaultRequestTimeout     = 30
	defaultMaxRetries         = 3
	defaultRateLimitPerMinute = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 60
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateFile:     defaultStateFile,
			ActivationLog: defaultActivationLog,
			LogDir:        defaultLogDir,
			SocketPath:    defaultSocketPath,
			TrashDir:      defaultTrashDir,
		},
		Filters: Filters{
			NumPerPage:    defaultNumPerPage,
			MaxPages:      defaultMaxPages,
			MinCandidates: defaultMinCandidates,
		},
		Sort: Sort{
			Method: defaultSortMethod,
		},
		Rotation: Rotation{
			OnePerRun:         true,
			RotateIfAllDone:   true,
			MaxAttemptsPerRun: defaultMaxAttemptsPerRun,
		},
		Cleanup: Cleanup{
			KeepLastN: defaultKeepLastN,
		},
		Schedule: Schedule{
			RunOnStartup:   true,
			Interval:       defaultInterval,
			DetectInterval: defaultDetectInterval,
		},
		Network: Network{
			RequestTimeout:     defaultRequestTimeout,
			MaxRetries:         defaultMaxRetries,
			RateLimitPerMinute: defaultRateLimitPerMinute,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Applied:        true,
			Errors:         true,
		},
	}
}
