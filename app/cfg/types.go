package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port         string
	DataFile     string
	VocabFile    string
	APIAccessKey string

	// LLM configuration
	LLMAPIKey         string
	LLMModel          string
	LLMTimeoutSeconds int

	// Trending configuration
	TrendingWindowHours  int
	TrendingHalfLife     float64
	TrendingPrecision    float64
	TrendingTTLSeconds   int
	TrendingCacheEntries int

	// Background processing
	WorkerCount       int
	SchedulerInterval int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
