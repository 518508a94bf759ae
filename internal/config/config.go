package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"SentimentDashboard/internal/collector"
)

// Config holds all application configuration.
type Config struct {
	Backend struct {
		BaseURL    string        `yaml:"base_url"`
		Classifier string        `yaml:"classifier"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"backend"`
	News struct {
		LimitArticles      int    `yaml:"limit_articles"`
		IncludeDescription *bool  `yaml:"include_description"`
		SortBy             string `yaml:"sort_by"`
	} `yaml:"news"`
	Reddit struct {
		Timeframe          string `yaml:"timeframe"`
		LimitPosts         int    `yaml:"limit_posts"`
		IncludeComments    *bool  `yaml:"include_comments"`
		CommentsPerPost    int    `yaml:"comments_per_post"`
		IncludeFinanceSubs *bool  `yaml:"include_finance_subs"`
	} `yaml:"reddit"`
	Server struct {
		Addr         string `yaml:"addr"`
		AssetsDir    string `yaml:"assets_dir"`
		FallbackLogo string `yaml:"fallback_logo"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Watchlist struct {
		StateFile string   `yaml:"state_file"`
		Tickers   []string `yaml:"tickers"`
		Cron      string   `yaml:"cron"`
	} `yaml:"watchlist"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config, then applies
// environment variable overrides and defaults. The backend base URL is only
// taken from the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SENTIMENT_CLASSIFIER"); v != "" {
		cfg.Backend.Classifier = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist.Tickers = splitTickers(v)
	}
	if v := os.Getenv("CRON_SWEEP"); v != "" {
		cfg.Watchlist.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = d
		}
	}
	if v := os.Getenv("REDDIT_LIMIT_POSTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reddit.LimitPosts = n
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := collector.DefaultParams()
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = collector.DefaultBaseURL
	}
	if c.Backend.Classifier == "" {
		c.Backend.Classifier = def.Classifier
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 60 * time.Second
	}
	if c.News.LimitArticles == 0 {
		c.News.LimitArticles = def.News.LimitArticles
	}
	if c.News.IncludeDescription == nil {
		c.News.IncludeDescription = &def.News.IncludeDescription
	}
	if c.News.SortBy == "" {
		c.News.SortBy = def.News.SortBy
	}
	if c.Reddit.Timeframe == "" {
		c.Reddit.Timeframe = def.Reddit.Timeframe
	}
	if c.Reddit.LimitPosts == 0 {
		c.Reddit.LimitPosts = def.Reddit.LimitPosts
	}
	if c.Reddit.IncludeComments == nil {
		c.Reddit.IncludeComments = &def.Reddit.IncludeComments
	}
	if c.Reddit.CommentsPerPost == 0 {
		c.Reddit.CommentsPerPost = def.Reddit.CommentsPerPost
	}
	if c.Reddit.IncludeFinanceSubs == nil {
		c.Reddit.IncludeFinanceSubs = &def.Reddit.IncludeFinanceSubs
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.AssetsDir == "" {
		c.Server.AssetsDir = "web"
	}
	if c.Server.FallbackLogo == "" {
		c.Server.FallbackLogo = "tesla.png"
	}
	if c.Watchlist.StateFile == "" {
		c.Watchlist.StateFile = "data/watchlist.json"
	}
	if c.Watchlist.Cron == "" {
		c.Watchlist.Cron = "0 0 9,16 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/sentiment.db"
	}
	if c.Log.File == "" {
		c.Log.File = "logs/dashboard.log"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 25
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
}

// Params builds the backend request parameters.
func (c *Config) Params() collector.Params {
	return collector.Params{
		Classifier: c.Backend.Classifier,
		News: collector.NewsParams{
			Classifier:         c.Backend.Classifier,
			LimitArticles:      c.News.LimitArticles,
			IncludeDescription: *c.News.IncludeDescription,
			SortBy:             c.News.SortBy,
		},
		Reddit: collector.RedditParams{
			Classifier:         c.Backend.Classifier,
			Timeframe:          c.Reddit.Timeframe,
			LimitPosts:         c.Reddit.LimitPosts,
			IncludeComments:    *c.Reddit.IncludeComments,
			CommentsPerPost:    c.Reddit.CommentsPerPost,
			IncludeFinanceSubs: *c.Reddit.IncludeFinanceSubs,
		},
	}
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

var validTimeframes = map[string]bool{"hour": true, "day": true, "week": true, "month": true, "year": true, "all": true}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must be an http(s) URL")
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}
	if c.News.LimitArticles < 0 || c.Reddit.LimitPosts < 0 || c.Reddit.CommentsPerPost < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if !validTimeframes[c.Reddit.Timeframe] {
		return fmt.Errorf("reddit.timeframe %q is not one of hour, day, week, month, year, all", c.Reddit.Timeframe)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

func splitTickers(v string) []string {
	var out []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
