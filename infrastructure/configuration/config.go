package configuration

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `mapstructure:"app"`
	YouTube     YouTube     `mapstructure:"youtube"`
	GoogleSheet GoogleSheet `mapstructure:"googleSheet"`
	Queue       Queue       `mapstructure:"queue"`
	Schedule    Schedule    `mapstructure:"schedule"`
	Download    Download    `mapstructure:"download"`
	Pubsub      Pubsub      `mapstructure:"pubsub"`
	Logger      Logger      `mapstructure:"logger"`
}

type App struct {
	Port        int      `mapstructure:"port"`
	SecretKey   string   `mapstructure:"secretKey"`
	AllowOrigin []string `mapstructure:"allowOrigins"`
	RunLockFile string   `mapstructure:"runLockFile"`
}

type YouTube struct {
	ClientID        string `mapstructure:"clientId"`
	ClientSecret    string `mapstructure:"clientSecret"`
	RefreshToken    string `mapstructure:"refreshToken"`
	TokenFile       string `mapstructure:"tokenFile"`
	TokenURI        string `mapstructure:"tokenUri"`
	AuthFlow        string `mapstructure:"authFlow"`
	UploadChunkSize int    `mapstructure:"uploadChunkSize"`
}

type GoogleSheet struct {
	ProjectID         string `mapstructure:"projectId"`
	PrivateKeyID      string `mapstructure:"privateKeyId"`
	PrivateKey        string `mapstructure:"privateKey"`
	ClientEmail       string `mapstructure:"clientEmail"`
	ClientID          string `mapstructure:"clientId"`
	ClientX509CertURL string `mapstructure:"clientX509CertUrl"`
	SpreadsheetName   string `mapstructure:"spreadsheetName"`
	WorksheetName     string `mapstructure:"worksheetName"`
}

type Queue struct {
	Source      string `mapstructure:"source"`
	CSVPath     string `mapstructure:"csvPath"`
	WriteMode   string `mapstructure:"writeMode"`
	PostedMatch string `mapstructure:"postedMatch"`
	TempFile    string `mapstructure:"tempFile"`
}

type Schedule struct {
	DailyCap  int    `mapstructure:"dailyCap"`
	UTCOffset string `mapstructure:"utcOffset"`
}

type Download struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	ShowProgress bool          `mapstructure:"showProgress"`
}

type Pubsub struct {
	ProjectID string `mapstructure:"projectID"`
	Topic     string `mapstructure:"topic"`
}

type Logger struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
	ToFile bool   `mapstructure:"toFile"`
}

// Queue sources
const (
	SourceGoogleSheet = "googlesheet"
	SourceCSV         = "csv"
)

// Auth flows of the YouTube credential provider
const (
	AuthFlowRefresh   = "refresh"
	AuthFlowInstalled = "installed"
)

// C is the configuration of the running process, set by LoadConfig
var C Config

// envBindings maps config keys to the environment variables that feed them.
// The first variable listed wins when several are set.
var envBindings = map[string][]string{
	"youtube.clientId":              {"CLIENT_ID", "YOUTUBE_CLIENT_ID"},
	"youtube.clientSecret":          {"CLIENT_SECRET", "YOUTUBE_CLIENT_SECRET"},
	"youtube.refreshToken":          {"REFRESH_TOKEN", "YOUTUBE_REFRESH_TOKEN"},
	"youtube.tokenFile":             {"TOKEN_FILE"},
	"youtube.tokenUri":              {"TOKEN_URI"},
	"youtube.authFlow":              {"AUTH_FLOW"},
	"youtube.uploadChunkSize":       {"UPLOAD_CHUNK_SIZE"},
	"googleSheet.projectId":         {"GCP_PROJECT_ID"},
	"googleSheet.privateKeyId":      {"GCP_PRIVATE_KEY_ID"},
	"googleSheet.privateKey":        {"GCP_PRIVATE_KEY"},
	"googleSheet.clientEmail":       {"GCP_CLIENT_EMAIL"},
	"googleSheet.clientId":          {"GCP_CLIENT_ID"},
	"googleSheet.clientX509CertUrl": {"GCP_CLIENT_X509_CERT_URL"},
	"googleSheet.spreadsheetName":   {"SHEET_NAME"},
	"googleSheet.worksheetName":     {"WORKSHEET_NAME"},
	"queue.source":                  {"QUEUE_SOURCE"},
	"queue.csvPath":                 {"QUEUE_CSV_PATH"},
	"queue.writeMode":               {"QUEUE_WRITE_MODE"},
	"queue.postedMatch":             {"POSTED_MATCH"},
	"queue.tempFile":                {"TEMP_FILE"},
	"schedule.dailyCap":             {"DAILY_CAP"},
	"schedule.utcOffset":            {"UTC_OFFSET"},
	"download.timeout":              {"DOWNLOAD_TIMEOUT"},
	"download.showProgress":         {"SHOW_PROGRESS"},
	"pubsub.projectID":              {"PUBSUB_PROJECT_ID"},
	"pubsub.topic":                  {"PUBSUB_TOPIC"},
	"app.port":                      {"APP_PORT", "PORT"},
	"app.secretKey":                 {"SECRET_KEY"},
	"app.allowOrigins":              {"CORS_ALLOW_ORIGINS"},
	"app.runLockFile":               {"RUN_LOCK_FILE"},
	"logger.format":                 {"LOG_FORMAT"},
	"logger.level":                  {"LOG_LEVEL"},
	"logger.toFile":                 {"LOG_TO_FILE"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", 10001)
	v.SetDefault("app.allowOrigins", []string{})
	v.SetDefault("app.runLockFile", "autopost.lock")
	v.SetDefault("youtube.tokenFile", "tokens.json")
	v.SetDefault("youtube.tokenUri", "https://oauth2.googleapis.com/token")
	v.SetDefault("youtube.authFlow", AuthFlowRefresh)
	v.SetDefault("youtube.uploadChunkSize", 8*1024*1024)
	v.SetDefault("googleSheet.spreadsheetName", "InstaAuto")
	v.SetDefault("googleSheet.worksheetName", "Sheet1")
	v.SetDefault("queue.source", SourceGoogleSheet)
	v.SetDefault("queue.csvPath", "queue.csv")
	v.SetDefault("queue.writeMode", string(model.WriteModeOverwrite))
	v.SetDefault("queue.postedMatch", string(model.PostedMatchNormalized))
	v.SetDefault("queue.tempFile", "temp.mp4")
	v.SetDefault("schedule.dailyCap", 2)
	v.SetDefault("schedule.utcOffset", "+05:30")
	v.SetDefault("download.timeout", time.Duration(0))
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.level", "info")
}

// LoadConfig loads the process configuration into C
func LoadConfig(name string) error {
	cfg, err := Load(name)
	if err != nil {
		return err
	}
	C = *cfg
	logger.Configure(C.Logger.Format, C.Logger.Level, C.Logger.ToFile)
	return nil
}

// Load reads the optional JSON config file and the environment. Environment
// variables win over the file.
func Load(name string) (*Config, error) {
	if name == "" {
		name = getConfig()
	}
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logger.GetLogger().WithField("config", name).Debug("Config file not found, using environment only")
		} else {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		logger.GetLogger().WithField("config", v.ConfigFileUsed()).Info("Config file loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// CORS_ALLOW_ORIGINS arrives as a single comma separated string
	if len(cfg.App.AllowOrigin) == 1 && strings.Contains(cfg.App.AllowOrigin[0], ",") {
		cfg.App.AllowOrigin = splitList(cfg.App.AllowOrigin[0])
	}
	return &cfg, nil
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var offsetPattern = regexp.MustCompile(`^(?:UTC)?([+-])(\d{1,2}):?(\d{2})$`)

// ParseUTCOffset turns "+05:30", "+0530" or "UTC+05:30" into a fixed zone
func ParseUTCOffset(offset string) (*time.Location, error) {
	offset = strings.TrimSpace(offset)
	if offset == "" || offset == "Z" || strings.EqualFold(offset, "UTC") {
		return time.UTC, nil
	}
	m := offsetPattern.FindStringSubmatch(offset)
	if m == nil {
		return nil, fmt.Errorf("invalid UTC offset %q", offset)
	}
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("invalid UTC offset %q", offset)
	}
	seconds := hours*3600 + minutes*60
	if m[1] == "-" {
		seconds = -seconds
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", m[1], hours, minutes), seconds), nil
}

// RunConfig derives the immutable settings of a run
func (c *Config) RunConfig() (model.RunConfig, error) {
	loc, err := ParseUTCOffset(c.Schedule.UTCOffset)
	if err != nil {
		return model.RunConfig{}, err
	}
	match := model.PostedMatch(strings.ToLower(c.Queue.PostedMatch))
	if match != model.PostedMatchExact && match != model.PostedMatchNormalized {
		return model.RunConfig{}, fmt.Errorf("invalid posted match %q", c.Queue.PostedMatch)
	}
	mode := model.WriteMode(strings.ToLower(c.Queue.WriteMode))
	if mode != model.WriteModeOverwrite && mode != model.WriteModeRow {
		return model.RunConfig{}, fmt.Errorf("invalid queue write mode %q", c.Queue.WriteMode)
	}
	if c.Schedule.DailyCap < 0 {
		return model.RunConfig{}, fmt.Errorf("daily cap must not be negative, got %d", c.Schedule.DailyCap)
	}
	return model.RunConfig{
		SheetName:     c.GoogleSheet.SpreadsheetName,
		WorksheetName: c.GoogleSheet.WorksheetName,
		DailyCap:      c.Schedule.DailyCap,
		Location:      loc,
		TempFile:      c.Queue.TempFile,
		PostedMatch:   match,
		WriteMode:     mode,
	}, nil
}
