package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner with the loaded mapping summary
func PrintBanner(cfg *Config, mode, logFile string, configurations int) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorCyan).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(80)

	fmt.Printf("\n")

	b.PrintTopLine()
	b.PrintCenteredText("LEANSYNC")
	b.PrintCenteredText("Issue Field Synchronization Engine")
	b.PrintSeparatorLine()

	b.PrintKeyValue("Version", GetVersion(), 15)
	b.PrintKeyValue("Build", GetBuild(), 15)
	b.PrintKeyValue("Environment", cfg.Service.Environment, 15)
	b.PrintKeyValue("Mode", mode, 15)
	b.PrintKeyValue("Port", strconv.Itoa(cfg.Service.Port), 15)
	b.PrintKeyValue("Mappings", strconv.Itoa(configurations), 15)
	b.PrintBottomLine()

	fmt.Printf("\n")

	fmt.Printf("📋 Configuration:\n")
	fmt.Printf("   • Database: %s\n", cfg.Storage.DatabasePath)
	if cfg.Sync.MappingFile != "" {
		fmt.Printf("   • Mapping File: %s\n", cfg.Sync.MappingFile)
	}
	if logFile != "" {
		pattern := strings.Replace(logFile, ".log", ".{YYYY-MM-DDTHH-MM-SS}.log", 1)
		fmt.Printf("   • Log File: %s\n", pattern)
	}
	fmt.Printf("\n")
}

// PrintShutdownBanner displays the application shutdown banner
func PrintShutdownBanner(serviceName string) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorCyan).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(42)

	b.PrintTopLine()
	b.PrintCenteredText("SHUTTING DOWN")
	b.PrintCenteredText(serviceName)
	b.PrintBottomLine()
	fmt.Println()
}

// PrintSuccess prints a success message in green
func PrintSuccess(message string) {
	fmt.Printf("%s✓ %s%s\n", banner.ColorGreen, message, banner.ColorReset)
}

// PrintError prints an error message in red
func PrintError(message string) {
	fmt.Printf("%s✗ %s%s\n", banner.ColorRed, message, banner.ColorReset)
}
