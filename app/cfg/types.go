package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	SourcesDir        string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Fetch configuration
	ProxyURL         string
	ProxyFallbackURL string
	FetchTimeout     int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
