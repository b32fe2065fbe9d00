package cfg

import "time"

type Cfg struct {
	// Messaging
	BotToken       string
	ChannelID      string
	APIURL         string
	ParseMode      string
	BatchMode      string
	DeliverTimeout time.Duration
	SendInterval   time.Duration
	DailyImage     bool
	DailyImageURL  string

	// Feeds
	Feeds          []string
	FeedsFile      string
	MaxArticles    int
	SummaryLength  int
	MessageLength  int
	RetryCount     int
	RetryDelay     time.Duration
	FetchTimeout   time.Duration
	WorkerCount    int
	ExtractContent bool

	// Dedup cache
	CacheBackend string
	CacheFile    string
	CacheDB      string

	// Application metadata
	UserAgent string
	Timezone  string
	Location  *time.Location
	Debug     bool
	Version   string
}
