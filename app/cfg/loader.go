package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const (
	BatchModeSingle = "single"
	BatchModePack   = "pack"

	ParseModeMarkdownV2 = "MarkdownV2"
	ParseModeHTML       = "HTML"

	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
)

// Below this limit a long title, link and source may not fit the message
// header, and such messages fall back to plain text.
const MinSafeMessageLength = 1024

type rawCfg struct {
	// Messaging configuration
	BotToken       string        `long:"bot-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token (required)"`
	ChannelID      string        `long:"channel-id" env:"TELEGRAM_CHANNEL_ID" description:"Destination channel or chat ID (required)"`
	APIURL         string        `long:"api-url" env:"TELEGRAM_API_URL" default:"https://api.telegram.org" description:"Bot API base URL"`
	ParseMode      string        `long:"parse-mode" env:"PARSE_MODE" default:"MarkdownV2" choice:"MarkdownV2" choice:"HTML" description:"Markup dialect of delivered messages"`
	BatchMode      string        `long:"batch-mode" env:"BATCH_MODE" default:"single" choice:"single" choice:"pack" description:"One message per article, or pack articles up to the message limit"`
	DeliverTimeout time.Duration `long:"deliver-timeout" env:"DELIVER_TIMEOUT" default:"10s" description:"Timeout of a single delivery call"`
	SendInterval   time.Duration `long:"send-interval" env:"SEND_INTERVAL" default:"0s" description:"Minimum spacing between Bot API calls (0 disables pacing)"`
	DailyImage     bool          `long:"daily-image" env:"DAILY_IMAGE" description:"Attach the Bing picture of the day to the first message"`
	DailyImageURL  string        `long:"daily-image-url" env:"DAILY_IMAGE_URL" default:"https://www.bing.com/HPImageArchive.aspx?format=js&idx=0&n=1&mkt=en-US" description:"Bing image archive endpoint"`

	// Feed configuration
	Feeds          []string      `long:"feed" env:"RSS_FEEDS" env-delim:"," description:"Feed URL (repeatable); overrides the feeds file"`
	FeedsFile      string        `long:"feeds-file" env:"RSS_FEEDS_FILE" default:"rss_feeds.txt" description:"File with feed URLs (.txt, one per line) or sources (.yml)"`
	MaxArticles    int           `long:"max-articles" env:"MAX_ARTICLES_PER_FEED" default:"5" description:"Maximum entries taken from each feed"`
	SummaryLength  int           `long:"summary-length" env:"SUMMARY_MAX_LENGTH" default:"100" description:"Maximum summary length in characters"`
	MessageLength  int           `long:"message-length" env:"MAX_MESSAGE_LENGTH" default:"4096" description:"Maximum message length in characters"`
	RetryCount     int           `long:"retry-count" env:"RETRY_COUNT" default:"3" description:"Fetch attempts per feed"`
	RetryDelay     time.Duration `long:"retry-delay" env:"RETRY_DELAY" default:"2s" description:"Delay between fetch attempts"`
	FetchTimeout   time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30s" description:"Timeout of a single fetch attempt"`
	WorkerCount    int           `long:"workers" env:"WORKER_COUNT" default:"5" description:"Number of concurrent feed fetches"`
	ExtractContent bool          `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch the article page when an entry has no summary or image"`

	// Dedup cache configuration
	CacheBackend string `long:"cache-backend" env:"CACHE_BACKEND" default:"file" choice:"file" choice:"sqlite" description:"Storage of delivered links"`
	CacheFile    string `long:"cache-file" env:"SENT_ITEMS_FILE" default:"sent_items.txt" description:"Line-delimited file of delivered links"`
	CacheDB      string `long:"cache-db" env:"CACHE_DB" default:"sent_items.db" description:"SQLite database of delivered links"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Relay/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" description:"Timezone that defines \"today\" (e.g., UTC, Asia/Shanghai); system default when empty"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the command line and the environment. It returns nil, nil when
// help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		BotToken:       strings.TrimSpace(raw.BotToken),
		ChannelID:      strings.TrimSpace(raw.ChannelID),
		APIURL:         strings.TrimRight(raw.APIURL, "/"),
		ParseMode:      raw.ParseMode,
		BatchMode:      raw.BatchMode,
		DeliverTimeout: raw.DeliverTimeout,
		SendInterval:   raw.SendInterval,
		DailyImage:     raw.DailyImage,
		DailyImageURL:  raw.DailyImageURL,
		Feeds:          compact(raw.Feeds),
		FeedsFile:      raw.FeedsFile,
		MaxArticles:    raw.MaxArticles,
		SummaryLength:  raw.SummaryLength,
		MessageLength:  raw.MessageLength,
		RetryCount:     raw.RetryCount,
		RetryDelay:     raw.RetryDelay,
		FetchTimeout:   raw.FetchTimeout,
		WorkerCount:    raw.WorkerCount,
		ExtractContent: raw.ExtractContent,
		CacheBackend:   raw.CacheBackend,
		CacheFile:      raw.CacheFile,
		CacheDB:        raw.CacheDB,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Location:       time.Local,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone '%s': %w", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if cfg.MessageLength < MinSafeMessageLength {
		slog.Warn("Message length may cut message markup", "message_length", cfg.MessageLength, "recommended_min", MinSafeMessageLength)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.BotToken == "" {
		return fmt.Errorf("bot token is required (--bot-token or TELEGRAM_BOT_TOKEN)")
	}
	if cfg.ChannelID == "" {
		return fmt.Errorf("channel ID is required (--channel-id or TELEGRAM_CHANNEL_ID)")
	}
	if u, err := url.Parse(cfg.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api url must be an http(s) URL, got '%s'", cfg.APIURL)
	}
	if len(cfg.Feeds) == 0 && cfg.FeedsFile == "" {
		return fmt.Errorf("no feed sources: set --feed or --feeds-file")
	}
	if cfg.MaxArticles <= 0 {
		return fmt.Errorf("max articles must be positive")
	}
	if cfg.SummaryLength <= 0 {
		return fmt.Errorf("summary length must be positive")
	}
	if cfg.MessageLength <= 0 {
		return fmt.Errorf("message length must be positive")
	}
	if cfg.RetryCount <= 0 {
		return fmt.Errorf("retry count must be positive")
	}
	if cfg.RetryDelay < 0 {
		return fmt.Errorf("retry delay must be non-negative")
	}
	if cfg.FetchTimeout <= 0 || cfg.DeliverTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if cfg.SendInterval < 0 {
		return fmt.Errorf("send interval must be non-negative")
	}
	if cfg.WorkerCount <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	if cfg.CacheBackend == CacheBackendFile && cfg.CacheFile == "" {
		return fmt.Errorf("cache file is required for the file backend")
	}
	if cfg.CacheBackend == CacheBackendSQLite && cfg.CacheDB == "" {
		return fmt.Errorf("cache database is required for the sqlite backend")
	}
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
