package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/BeastBots/TgBotStatus/internal/statuserr"
)

var (
	ErrMissingCredential = errors.New("missing credential")
)

// Defaults for the optional environment variables.
const (
	DefaultHeader   = "🔥 Mirror Beast Gateways!"
	DefaultFooter   = "— Powered by Beast"
	DefaultTimeZone = "Asia/Kolkata"
)

// Button is one inline keyboard button attached to the report message.
type Button struct {
	Label string
	URL   string
}

// Env holds every environment-level option.
type Env struct {
	APIID       int
	APIHash     string
	SessionFile string

	Header   string
	Footer   string
	Buttons  [][]Button
	Location *time.Location
	MediaURL string
}

// LoadEnv reads the environment, after loading a .env file if one exists.
func LoadEnv(logger *zap.Logger) (Env, error) {
	if err := godotenv.Overload(".env"); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env", zap.Error(err))
	}

	env := Env{
		Header:      DefaultHeader,
		Footer:      DefaultFooter,
		SessionFile: "tgbotstatus.session",
		MediaURL:    os.Getenv("MEDIA"),
	}

	rawID := os.Getenv("API_ID")
	id, err := strconv.Atoi(rawID)
	if rawID == "" || err != nil || id <= 0 {
		return Env{}, statuserr.New(ErrMissingCredential, nil, "API_ID is not set or not a number")
	}
	env.APIID = id

	env.APIHash = os.Getenv("API_HASH")
	if env.APIHash == "" {
		return Env{}, statuserr.New(ErrMissingCredential, nil, "API_HASH is not set")
	}

	if s := os.Getenv("SESSION_FILE"); s != "" {
		env.SessionFile = s
	}
	if s := os.Getenv("HEADER_MSG"); s != "" {
		env.Header = s
	}
	if s := os.Getenv("FOOTER_MSG"); s != "" {
		env.Footer = s
	}

	env.Buttons = ParseButtons(os.Getenv("MSG_BUTTONS"), logger)

	tz := os.Getenv("TIME_ZONE")
	if tz == "" {
		tz = DefaultTimeZone
	}
	env.Location, err = time.LoadLocation(tz)
	if err != nil {
		logger.Warn("invalid TIME_ZONE, falling back to UTC", zap.String("time_zone", tz))
		env.Location = time.UTC
	}

	return env, nil
}

// ParseButtons parses a button specification string like
// "Updates#https://t.me/a|Support#https://t.me/b||Site#https://example.com".
//
// Cells are separated by "|", rows by "||", and each cell is "label#url".
// Malformed cells are skipped with a warning.
func ParseButtons(spec string, logger *zap.Logger) [][]Button {
	if spec == "" {
		return nil
	}

	var rows [][]Button
	for _, rawRow := range strings.Split(spec, "||") {
		var row []Button
		for _, cell := range strings.Split(rawRow, "|") {
			label, url, ok := strings.Cut(cell, "#")
			if !ok || strings.TrimSpace(label) == "" || strings.TrimSpace(url) == "" {
				logger.Warn("invalid button format", zap.String("button", cell))
				continue
			}
			row = append(row, Button{
				Label: strings.TrimSpace(label),
				URL:   strings.TrimSpace(url),
			})
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	return rows
}

// FetchRemote downloads .env and config.json from CONFIG_ENV_URL and
// CONFIG_JSON_URL when those variables are set.
//
// Download failures are logged and the local files are used as-is.
func FetchRemote(ctx context.Context, logger *zap.Logger) {
	if u := os.Getenv("CONFIG_ENV_URL"); u != "" {
		logger.Info("downloading .env", zap.String("url", u))
		if err := fetchFile(ctx, u, ".env"); err != nil {
			logger.Error("failed to download .env", zap.Error(err))
		}
	}

	if u := os.Getenv("CONFIG_JSON_URL"); u != "" {
		logger.Info("downloading config.json", zap.String("url", u))
		if err := fetchFile(ctx, u, "config.json"); err != nil {
			logger.Error("failed to download config.json", zap.Error(err))
		}
	}
}

func fetchFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	return err
}
