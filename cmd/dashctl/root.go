package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dashboard-gateway/internal/backend"
)

var (
	flagBackendURL string
	flagTimeoutSec int
)

var rootCmd = &cobra.Command{
	Use:   "dashctl",
	Short: "dashctl talks to the analytics backend from the terminal",
	Long: `dashctl is a command-line companion to the dashboard: upload CSVs,
run natural-language queries and request analyses against the same backend.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackendURL, "backend", "", "backend base URL (default $BACKEND_BASE_URL or http://localhost:3000/api)")
	rootCmd.PersistentFlags().IntVar(&flagTimeoutSec, "timeout", 30, "request timeout in seconds")
}

func backendURL() string {
	if flagBackendURL != "" {
		return flagBackendURL
	}
	if env := os.Getenv("BACKEND_BASE_URL"); env != "" {
		return env
	}
	return "http://localhost:3000/api"
}

// apiClient builds a client carrying the stored token, which may be empty for
// the login command itself.
func apiClient() *backend.Client {
	token, _ := loadToken()
	return backend.New(backendURL(), time.Duration(flagTimeoutSec)*time.Second, backend.StaticToken(token))
}

func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dashctl", "token"), nil
}

func loadToken() (string, error) {
	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

func clearToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
