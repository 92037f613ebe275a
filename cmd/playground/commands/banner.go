package commands

import (
	"fmt"

	"github.com/markuplab/playground/internal/version"
	"github.com/markuplab/playground/logger"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity, port int, vocabPath string) {
	// ANSI escape codes
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔═══════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                           ║\n")
	fmt.Printf("   ║        <markup playground />              ║\n")
	fmt.Printf("   ║                                           ║\n")
	fmt.Printf("   ╚═══════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ Playground Info ───────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:    %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:      %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Port:       %d\n", green, reset, port)
	fmt.Printf("%s│%s Verbosity:  %s\n", green, reset, logger.LevelName(verbosity))
	if vocabPath != "" {
		fmt.Printf("%s│%s Vocabulary: %s\n", green, reset, vocabPath)
	} else {
		fmt.Printf("%s│%s Vocabulary: built-in\n", green, reset)
	}
	fmt.Printf("%s└─────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Open /preview in a browser for the live view%s\n", yellow, bold, reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
