package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Catalog source configuration
	SourceFile  string
	GitHubToken string

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
