package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to gazeoverlay! Let's configure the overlay.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Settings database.
	dbPrompt := promptui.Prompt{
		Label:   "Settings database path",
		Default: cfg.Storage.DBPath,
	}
	dbPath, err := dbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	cfg.Storage.DBPath = dbPath

	// 2. Poll interval.
	intervalPrompt := promptui.Prompt{
		Label:    "Poll interval in milliseconds",
		Default:  strconv.Itoa(cfg.Poll.IntervalMS),
		Validate: validatePositiveInt,
	}
	intervalStr, err := intervalPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("poll interval: %w", err)
	}
	cfg.Poll.IntervalMS, _ = strconv.Atoi(intervalStr)

	// 3. Text input kinds.
	kindsPrompt := promptui.Prompt{
		Label:   "Text input element kinds (comma-separated globs)",
		Default: strings.Join(cfg.Overlay.TextInputKinds, ","),
	}
	kindsStr, err := kindsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("text input kinds: %w", err)
	}
	if kinds := splitAndTrim(kindsStr); len(kinds) > 0 {
		cfg.Overlay.TextInputKinds = kinds
	}

	// 4. Log format.
	formatPrompt := promptui.Select{
		Label: "Log format",
		Items: []string{string(LogFormatText), string(LogFormatJSON)},
	}
	_, format, err := formatPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log format: %w", err)
	}
	cfg.Log.Format = LogFormat(format)

	// 5. Status server.
	serverPrompt := promptui.Select{
		Label: "Start the status server with the overlay",
		Items: []string{"no", "yes"},
	}
	serverIdx, _, err := serverPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("status server: %w", err)
	}
	cfg.Server.Enabled = serverIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	fmt.Println("Point the overlay at a backend with `gazeoverlay settings set-backend <url>`.")
	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive whole number")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
