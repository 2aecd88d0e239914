package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ArionMiles/spendlens/pkg/config"
	"github.com/ArionMiles/spendlens/pkg/logging"
)

// runStatus checks the configuration and store connectivity.
func runStatus(cfg config.Config, configPath string) error {
	fmt.Println("=== Spendlens Status ===")
	fmt.Println()

	allGood := true

	checkConfigFile(configPath, &allGood)
	checkSettings(cfg, &allGood)
	checkPlugins(cfg, &allGood)

	if allGood {
		checkStoreConnectivity(cfg, &allGood)
	}

	printFinalStatus(allGood)

	return nil
}

func checkConfigFile(configPath string, allGood *bool) {
	if configPath == "" {
		configPath = os.Getenv(config.FileEnvVar)
	}
	if configPath == "" {
		fmt.Println("Config file: - none (defaults and environment)")
		return
	}

	fmt.Printf("Config file (%s): ", configPath)
	if _, err := os.Stat(configPath); err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}
	fmt.Println("✓ Found")
}

func checkSettings(cfg config.Config, allGood *bool) {
	fmt.Print("Configuration: ")
	if err := cfg.Validate(); err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}
	fmt.Println("✓ Valid")

	budget, _ := cfg.Budget()
	fmt.Printf("  Monthly budget: %s %s\n", budget, cfg.Currency)
	fmt.Printf("  Locale: %s\n", cfg.Locale)
	fmt.Printf("  Time zone: %s\n", cfg.Timezone)
}

func checkPlugins(cfg config.Config, allGood *bool) {
	fmt.Println()
	fmt.Println("Store backends:")

	registry, err := newRegistry()
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		*allGood = false
		return
	}

	for _, p := range registry.List() {
		marker := " "
		if p.Name() == cfg.StoreBackend {
			marker = "*"
		}
		fmt.Printf("  %s %-9s %s\n", marker, p.Name(), p.Description())
	}

	if _, err := registry.Get(cfg.StoreBackend); err != nil {
		fmt.Printf("  ✗ %v\n", err)
		*allGood = false
	}
}

func checkStoreConnectivity(cfg config.Config, allGood *bool) {
	fmt.Println()
	fmt.Printf("Store connectivity (%s): ", cfg.StoreBackend)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	a, err := open(ctx, cfg, logging.Discard())
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}
	defer a.Close()

	status := a.engine.TestConnection(ctx)
	if !status.Success {
		fmt.Printf("✗ %s\n", status.Message)
		*allGood = false
		return
	}
	fmt.Printf("✓ %s\n", status.Message)
}

func printFinalStatus(allGood bool) {
	fmt.Println()
	if allGood {
		fmt.Println("Status: ✓ Ready")
	} else {
		fmt.Println("Status: ✗ Not ready")
		fmt.Println()
		fmt.Println("Check the values above, then run 'spendlens status' again.")
	}
}
