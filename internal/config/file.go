package config

// fileConfig is the on-disk TOML shape. Durations are written as strings
// ("330ms") so the file stays readable and round-trips through viper.
type fileConfig struct {
	Version int `toml:"version"`
	Search  struct {
		Backend  string `toml:"backend"`
		Debounce string `toml:"debounce"`
		Timeout  string `toml:"timeout"`
		Limit    int    `toml:"limit"`
		BaseURL  string `toml:"base_url"`
		Country  string `toml:"country"`
		Media    string `toml:"media"`
		Entity   string `toml:"entity"`
		Latency  string `toml:"latency,omitempty"`
		Jitter   string `toml:"jitter,omitempty"`
	} `toml:"search"`
	Algolia struct {
		AppID         string `toml:"app_id"`
		APIKeyEnv     string `toml:"api_key_env"`
		Index         string `toml:"index"`
		TitleField    string `toml:"title_field"`
		SubtitleField string `toml:"subtitle_field"`
		ImageField    string `toml:"image_field"`
	} `toml:"algolia"`
	Images struct {
		CacheSize int    `toml:"cache_size"`
		Timeout   string `toml:"timeout"`
	} `toml:"images"`
	Grid struct {
		Columns   int `toml:"columns"`
		Margin    int `toml:"margin"`
		LabelBand int `toml:"label_band"`
	} `toml:"grid"`
	Transition struct {
		Duration      string `toml:"duration"`
		FrameInterval string `toml:"frame_interval"`
		Enabled       bool   `toml:"enabled"`
	} `toml:"transition"`
	Log struct {
		File string `toml:"file"`
	} `toml:"log"`
}

func toFile(c *Config) fileConfig {
	var f fileConfig
	f.Version = c.Version

	f.Search.Backend = c.Search.Backend
	f.Search.Debounce = c.Search.Debounce.String()
	f.Search.Timeout = c.Search.Timeout.String()
	f.Search.Limit = c.Search.Limit
	f.Search.BaseURL = c.Search.BaseURL
	f.Search.Country = c.Search.Country
	f.Search.Media = c.Search.Media
	f.Search.Entity = c.Search.Entity
	if c.Search.Latency > 0 {
		f.Search.Latency = c.Search.Latency.String()
	}
	if c.Search.Jitter > 0 {
		f.Search.Jitter = c.Search.Jitter.String()
	}

	f.Algolia.AppID = c.Algolia.AppID
	f.Algolia.APIKeyEnv = c.Algolia.APIKeyEnv
	f.Algolia.Index = c.Algolia.Index
	f.Algolia.TitleField = c.Algolia.TitleField
	f.Algolia.SubtitleField = c.Algolia.SubtitleField
	f.Algolia.ImageField = c.Algolia.ImageField

	f.Images.CacheSize = c.Images.CacheSize
	f.Images.Timeout = c.Images.Timeout.String()

	f.Grid.Columns = c.Grid.Columns
	f.Grid.Margin = c.Grid.Margin
	f.Grid.LabelBand = c.Grid.LabelBand

	f.Transition.Duration = c.Transition.Duration.String()
	f.Transition.FrameInterval = c.Transition.FrameInterval.String()
	f.Transition.Enabled = c.Transition.Enabled

	f.Log.File = c.Log.File
	return f
}
