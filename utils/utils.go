package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseArguments converts command-line arguments into a map of flags and values
func ParseArguments() map[string]string {
	args := make(map[string]string)

	// First, identify the command (generate/find/metadata)
	command := ""
	commandIndex := -1
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "generate" || os.Args[i] == "find" || os.Args[i] == "metadata" {
			command = os.Args[i]
			commandIndex = i
			break
		}
	}

	if command != "" {
		args["command"] = command
	}

	// Process all arguments, skipping the command
	for i := 1; i < len(os.Args); i++ {
		if i == commandIndex {
			continue
		}

		arg := os.Args[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") {
				args[flagName] = "true"
			} else {
				// The next argument is the value
				args[flagName] = os.Args[i+1]
				i++ // Skip the value in the next iteration
			}
		}
	}

	return args
}

// GetDefaultDatabasePath returns the default path for the run-report database
func GetDefaultDatabasePath() string {
	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "photofingerprint.db"
	}

	// Return the default database path next to the executable
	return filepath.Join(filepath.Dir(exePath), "photofingerprint.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s generate --source=DIR --dest=DIR [options]\n", os.Args[0])
	fmt.Printf("  %s find --source=FINGERPRINT_DIR --dest=SEARCH_DIR --low=N --high=N [options]\n", os.Args[0])
	fmt.Printf("  %s metadata --source=DIR [options]\n", os.Args[0])
	fmt.Printf("\nCommands:\n")
	fmt.Printf("  generate      : Write a normalized fingerprint file for every image under --source into --dest\n")
	fmt.Printf("  find          : Load fingerprints from --source and report duplicate candidates under --dest\n")
	fmt.Printf("  metadata      : Print path<TAB>capture-timestamp for every image under --source\n")
	fmt.Printf("\nOptions:\n")
	fmt.Printf("  --source      : Source directory (images for generate/metadata, fingerprints for find)\n")
	fmt.Printf("  --dest        : Destination directory (fingerprint output for generate, searched images for find)\n")
	fmt.Printf("  --threads     : Worker count (default: 3/4 of available CPUs, minimum 1)\n")
	fmt.Printf("  --fuzz        : Comparison tolerance as a fraction 0.0-1.0 (default: 0)\n")
	fmt.Printf("  --low         : Distortion below this is reported as identical (required for find)\n")
	fmt.Printf("  --high        : Distortion below this is reported as similar (required for find)\n")
	fmt.Printf("  --size        : Fingerprint dimensions as WxH (default: 100x100)\n")
	fmt.Printf("  --extensions  : Comma-separated recognized image suffixes\n")
	fmt.Printf("  --config      : TOML file supplying the options above\n")
	fmt.Printf("  --pairs       : Also write matches as a JSON array of path pairs to this file\n")
	fmt.Printf("  --database    : Record the run in a SQLite report database (default path: %s)\n", GetDefaultDatabasePath())
	fmt.Printf("  --debug       : Enable debug logging\n")
	fmt.Printf("  --logfile     : Debug log file path (default: photofingerprint.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s generate --source=/photos/master --dest=/fingerprints\n", os.Args[0])
	fmt.Printf("  %s find --source=/fingerprints --dest=/photos/incoming --low=10 --high=1000 --pairs=dups.json\n", os.Args[0])
	fmt.Printf("  %s metadata --source=/photos/master > timestamps.tsv\n", os.Args[0])
}

// ParseFuzz parses and validates the fuzz factor value from string
func ParseFuzz(fuzzStr string) (float64, error) {
	fuzz, err := strconv.ParseFloat(fuzzStr, 64)
	if err != nil || fuzz < 0 || fuzz > 1 {
		return 0, fmt.Errorf("invalid fuzz factor '%s', must be between 0.0 and 1.0", fuzzStr)
	}
	return fuzz, nil
}

// ParseThreshold parses and validates a distortion threshold value from string
func ParseThreshold(thresholdStr string) (float64, error) {
	threshold, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil || threshold < 0 {
		return 0, fmt.Errorf("invalid distortion threshold '%s', must be a non-negative number", thresholdStr)
	}
	return threshold, nil
}

// ParseDims parses fingerprint dimensions in WxH form
func ParseDims(dimsStr string) (width, height int, err error) {
	parts := strings.SplitN(strings.ToLower(dimsStr), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid dimensions '%s', expected WxH", dimsStr)
	}
	width, werr := strconv.Atoi(parts[0])
	height, herr := strconv.Atoi(parts[1])
	if werr != nil || herr != nil || width < 1 || height < 1 {
		return 0, 0, fmt.Errorf("invalid dimensions '%s', expected positive WxH", dimsStr)
	}
	return width, height, nil
}
