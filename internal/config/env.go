package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: the key file password is prompted at runtime and stored in memory -
// use GetKeyPasswordBytes()
type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	RPCURL             string `envconfig:"RPC_URL" default:"https://rpc.sepolia.linea.build"`
	ContractAddress    string `envconfig:"CONTRACT_ADDRESS" default:"0x33f751a60879825e0F3c386F9fdB0dD506fB31e7"`
	TargetChainID      uint64 `envconfig:"TARGET_CHAIN_ID" default:"59141"`
	AlertWindowSeconds int    `envconfig:"ALERT_WINDOW_SECONDS" default:"5"`
	ChainPollSeconds   int    `envconfig:"CHAIN_POLL_SECONDS" default:"10"`
	KeyFilePath        string `envconfig:"KEY_FILE_PATH" required:"true"`
	SessionFilePath    string `envconfig:"SESSION_FILE_PATH" default:".cryptify-session"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	cfg = &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetRPCURL returns the chain RPC endpoint from configuration
func GetRPCURL() string {
	return Get().RPCURL
}

// GetContractAddress returns the registry contract address from configuration
func GetContractAddress() string {
	return Get().ContractAddress
}

// GetTargetChainID returns the required target chain id from configuration
func GetTargetChainID() uint64 {
	return Get().TargetChainID
}

// GetAlertWindow returns the network alert auto-dismiss window
func GetAlertWindow() time.Duration {
	return time.Duration(Get().AlertWindowSeconds) * time.Second
}

// GetChainPollInterval returns how often the provider re-reads the chain id
func GetChainPollInterval() time.Duration {
	return time.Duration(Get().ChainPollSeconds) * time.Second
}

// GetKeyFilePath returns path to .ckt file from configuration
func GetKeyFilePath() string {
	return Get().KeyFilePath
}

// GetSessionFilePath returns path to the persisted session file
func GetSessionFilePath() string {
	return Get().SessionFilePath
}

var passwordBytes []byte

// PromptForPassword prompts the user for the key file password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, "Enter key file password: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("password cannot be empty")
	}

	passwordBytes = make([]byte, len(raw))
	copy(passwordBytes, raw)
	clear(raw)
	return nil
}

// GetKeyPasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetKeyPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
