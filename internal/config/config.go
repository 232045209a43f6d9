package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blackhelm/tradefloor/internal/domain"
)

// Config holds all runtime configuration for the exchange.
type Config struct {
	Port     int
	LogLevel string

	// Symbols maps each traded symbol to its base reference price in
	// cents. Submissions for symbols outside this table are rejected.
	Symbols map[string]int64

	StartingCash int64 // cents, granted to every new player

	BotInterval    time.Duration
	BotPriceBand   float64 // half-width of the bot quote band (0.05 = ±5%)
	MacroInterval  time.Duration
	MacroMaxImpact float64 // drift bound per macro tick (0.05 = ±5%)
	SimSeed        int64   // 0 means derive from the clock

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	symbols, err := parseSymbols(getStr("SYMBOLS", "AAPL:150.00,GOOGL:120.00,MSFT:100.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYMBOLS: %w", err)
	}

	startingCash, err := getMoney("STARTING_CASH", 10_000_00)
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_CASH: %w", err)
	}
	if startingCash < 0 {
		return nil, fmt.Errorf("invalid STARTING_CASH: must not be negative")
	}

	botInterval, err := getDuration("BOT_INTERVAL", 1*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_INTERVAL: %w", err)
	}

	botPriceBand, err := getFloat("BOT_PRICE_BAND", 0.05)
	if err != nil || botPriceBand < 0 || botPriceBand > 1 {
		return nil, fmt.Errorf("invalid BOT_PRICE_BAND: must be between 0 and 1")
	}

	macroInterval, err := getDuration("MACRO_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid MACRO_INTERVAL: %w", err)
	}

	macroMaxImpact, err := getFloat("MACRO_MAX_IMPACT", 0.05)
	if err != nil || macroMaxImpact < 0 || macroMaxImpact >= 1 {
		return nil, fmt.Errorf("invalid MACRO_MAX_IMPACT: must be in [0, 1)")
	}

	simSeed, err := getInt64("SIM_SEED", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid SIM_SEED: %w", err)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		Symbols:         symbols,
		StartingCash:    startingCash,
		BotInterval:     botInterval,
		BotPriceBand:    botPriceBand,
		MacroInterval:   macroInterval,
		MacroMaxImpact:  macroMaxImpact,
		SimSeed:         simSeed,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

// parseSymbols parses "SYM:price,SYM:price" into a symbol → cents table.
func parseSymbols(raw string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		sym, priceStr, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("entry %q must be SYMBOL:price", pair)
		}
		sym = strings.TrimSpace(sym)
		if sym == "" || sym != strings.ToUpper(sym) {
			return nil, fmt.Errorf("symbol %q must be uppercase", sym)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(priceStr), 64)
		if err != nil {
			return nil, fmt.Errorf("price for %s: %w", sym, err)
		}
		cents, err := domain.DollarsToCents(price)
		if err != nil || cents <= 0 {
			return nil, fmt.Errorf("price for %s must be a positive amount with at most 2 decimal places", sym)
		}
		out[sym] = cents
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one symbol is required")
	}
	return out, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getMoney(key string, defaultCents int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultCents, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return domain.DollarsToCents(f)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
