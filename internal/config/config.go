package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/tonkeeper/tongo/ton"
)

const (
	LedgerMemory = "memory"
	LedgerTon    = "ton"
)

// Platform policy defaults.
const (
	defaultListenAddress  = ":8080"
	defaultDatabasePath   = "persistent.db"
	defaultFeePercent     = 5
	defaultMaxTickets     = 2000
	defaultMaxCollections = 400
)

type Config struct {
	ListenAddress string
	DatabasePath  string

	Treasury ton.AccountID
	Vault    ton.AccountID

	FeePercent     uint64
	MaxTickets     uint64
	MaxCollections int

	Ledger         string
	WalletMnemonic string
	WalletVersion  string
	TonapiToken    string

	LogFile    string
	ErrorFile  string
	LogLevel   string
	LogConsole bool
}

// Load reads the .env file when present and resolves the configuration from
// the process environment. Address values must parse; a fee above 100
// percent is rejected.
func Load() (*Config, error) {

	// a missing .env file is fine, the process environment still applies
	_ = godotenv.Load()

	treasury, err := ton.ParseAccountID(os.Getenv("TREASURY_ADDRESS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TREASURY_ADDRESS: %w", err)
	}

	vault, err := ton.ParseAccountID(os.Getenv("VAULT_ADDRESS"))
	if err != nil {
		return nil, fmt.Errorf("invalid VAULT_ADDRESS: %w", err)
	}

	feePercent, err := envUint("COMMISSION_FEE_PERCENT", defaultFeePercent)
	if err != nil {
		return nil, err
	}
	if feePercent > 100 {
		return nil, fmt.Errorf("COMMISSION_FEE_PERCENT must not exceed 100, got %d", feePercent)
	}

	maxTickets, err := envUint("MAX_ENTRANTS", defaultMaxTickets)
	if err != nil {
		return nil, err
	}

	maxCollections, err := envUint("MAX_COLLECTIONS", defaultMaxCollections)
	if err != nil {
		return nil, err
	}

	ledgerMode := envString("LEDGER", LedgerMemory)
	if ledgerMode != LedgerMemory && ledgerMode != LedgerTon {
		return nil, fmt.Errorf("unknown LEDGER mode %q", ledgerMode)
	}
	if ledgerMode == LedgerTon && os.Getenv("WALLET_MNEMONIC") == "" {
		return nil, fmt.Errorf("WALLET_MNEMONIC is required for the ton ledger")
	}

	return &Config{
		ListenAddress:  envString("LISTEN_ADDRESS", defaultListenAddress),
		DatabasePath:   envString("DATABASE_PATH", defaultDatabasePath),
		Treasury:       treasury,
		Vault:          vault,
		FeePercent:     feePercent,
		MaxTickets:     maxTickets,
		MaxCollections: int(maxCollections),
		Ledger:         ledgerMode,
		WalletMnemonic: os.Getenv("WALLET_MNEMONIC"),
		WalletVersion:  envString("WALLET_VERSION", "V4R2"),
		TonapiToken:    os.Getenv("TONAPI_TOKEN"),
		LogFile:        os.Getenv("LOG_FILE"),
		ErrorFile:      os.Getenv("ERROR_LOG_FILE"),
		LogLevel:       envString("LOG_LEVEL", "debug"),
		LogConsole:     envString("LOG_CONSOLE", "true") == "true",
	}, nil
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envUint(key string, fallback uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
