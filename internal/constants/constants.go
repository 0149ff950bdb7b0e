package constants

import "time"

const (
	RetentionWindow = 20 * 24 * time.Hour
	DailyLookback   = 1 // days
	WeeklyLookback  = 7 // days
)

const (
	ExternalAPITimeout = 10 * time.Second
	RunTimeout         = 2 * time.Minute
	DatabaseTimeout    = 5 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
)

// Timestamp layouts. StoreTimestampLayout is what gets written; the rest are
// accepted when reading older files.
const (
	StoreTimestampLayout = "2006-01-02T15:04"
	DayLayout            = "2006-01-02"
	ReportTimeLayout     = "2006年01月02日 15:04"
	WindowDateLayout     = "1月2日"
	ConsoleTimeLayout    = "2006-01-02 15:04"
)

var AcceptedTimestampLayouts = []string{
	StoreTimestampLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

const (
	TimestampColumn = "timestamp"
	DefaultTimezone = "Asia/Tokyo"
)

const (
	LabelUnchanged = "未更新"
	LabelNoData    = "データがありません。"
	ViewCountUnit  = "回"
)

const (
	ShutdownTimeout = 5 * time.Second
)
