package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"photofingerprint/database"
	"photofingerprint/fingerprint"
	"photofingerprint/logging"
	"photofingerprint/metadata"
	"photofingerprint/report"
	"photofingerprint/signalhandler"
	"photofingerprint/types"
	"photofingerprint/utils"
)

func main() {
	// Set up proper signal handling
	signalhandler.SetupHandler()

	// Set the optimal number of CPUs to use
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	command, hasCommand := args["command"]
	if !hasCommand {
		utils.PrintUsage()
		os.Exit(1)
	}

	// Setup debug logging if enabled
	if _, ok := args["debug"]; ok {
		logPath := "photofingerprint.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	// All configuration errors are fatal before any worker starts
	options, err := buildOptions(command, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		utils.PrintUsage()
		os.Exit(1)
	}

	runPipeline(options, args)
}

// buildOptions assembles and validates the run configuration from the
// command, the optional TOML config file, and the flags. Flags override the
// config file.
func buildOptions(command string, args map[string]string) (types.WorkerOptions, error) {
	options := types.WorkerOptions{
		NumThreads:        signalhandler.GetOptimalProcs(),
		FingerprintWidth:  100,
		FingerprintHeight: 100,
		Extensions:        types.DefaultExtensions(),
	}

	switch command {
	case "generate":
		options.Mode = types.GenerateWorker
	case "find":
		options.Mode = types.DuplicateWorker
	case "metadata":
		options.Mode = types.MetadataWorker
	default:
		return options, fmt.Errorf("unknown command: %s", command)
	}

	if _, ok := args["debug"]; ok {
		options.DebugMode = true
	}

	hasLow := false
	hasHigh := false

	// Apply the config file first so flags can override it
	if cfgPath, ok := args["config"]; ok && cfgPath != "" && cfgPath != "true" {
		cfg, err := utils.LoadConfigFile(cfgPath)
		if err != nil {
			return options, err
		}
		if cfg.Threads != nil {
			options.NumThreads = *cfg.Threads
		}
		if cfg.FuzzFactor != nil {
			options.FuzzFactor = *cfg.FuzzFactor
		}
		if cfg.LowThreshold != nil {
			options.LowThreshold = *cfg.LowThreshold
			hasLow = true
		}
		if cfg.HighThreshold != nil {
			options.HighThreshold = *cfg.HighThreshold
			hasHigh = true
		}
		if cfg.Size != "" {
			w, h, err := utils.ParseDims(cfg.Size)
			if err != nil {
				return options, err
			}
			options.FingerprintWidth, options.FingerprintHeight = w, h
		}
		if len(cfg.Extensions) > 0 {
			options.Extensions = types.NewExtensionSet(cfg.Extensions)
		}
	}

	if v, ok := args["threads"]; ok {
		threads, err := strconv.Atoi(v)
		if err != nil || threads < 1 {
			return options, fmt.Errorf("invalid thread count '%s', must be at least 1", v)
		}
		options.NumThreads = threads
	}
	if v, ok := args["fuzz"]; ok {
		fuzz, err := utils.ParseFuzz(v)
		if err != nil {
			return options, err
		}
		options.FuzzFactor = fuzz
	}
	if v, ok := args["low"]; ok {
		low, err := utils.ParseThreshold(v)
		if err != nil {
			return options, err
		}
		options.LowThreshold = low
		hasLow = true
	}
	if v, ok := args["high"]; ok {
		high, err := utils.ParseThreshold(v)
		if err != nil {
			return options, err
		}
		options.HighThreshold = high
		hasHigh = true
	}
	if v, ok := args["size"]; ok {
		w, h, err := utils.ParseDims(v)
		if err != nil {
			return options, err
		}
		options.FingerprintWidth, options.FingerprintHeight = w, h
	}
	if v, ok := args["extensions"]; ok && v != "true" {
		options.Extensions = types.NewExtensionSet(strings.Split(v, ","))
	}
	if options.NumThreads < 1 {
		return options, fmt.Errorf("thread count must be at least 1")
	}

	options.SrcDirectory = firstArg(args, "source", "src")
	options.DstDirectory = firstArg(args, "dest", "dst")

	// Generate and find require two directories, metadata only a source
	if options.SrcDirectory == "" {
		return options, fmt.Errorf("missing source directory (use --source=DIR)")
	}
	if err := checkDirectory(options.SrcDirectory); err != nil {
		return options, err
	}
	if options.Mode != types.MetadataWorker {
		if options.DstDirectory == "" {
			return options, fmt.Errorf("missing destination directory (use --dest=DIR)")
		}
		if err := checkDirectory(options.DstDirectory); err != nil {
			return options, err
		}
	}

	// The thresholds have no sane universal defaults; duplicate finding
	// requires both, tuned to the corpus
	if options.Mode == types.DuplicateWorker {
		if !hasLow || !hasHigh {
			return options, fmt.Errorf("find requires both --low and --high distortion thresholds")
		}
		if options.LowThreshold >= options.HighThreshold {
			return options, fmt.Errorf("low threshold (%v) must be less than high threshold (%v)",
				options.LowThreshold, options.HighThreshold)
		}
	}

	return options, nil
}

// firstArg returns the first non-empty value among the given flag aliases
func firstArg(args map[string]string, keys ...string) string {
	for _, key := range keys {
		if v, ok := args[key]; ok && v != "" && v != "true" {
			return v
		}
	}
	return ""
}

// checkDirectory verifies a path exists and is a directory
func checkDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return fmt.Errorf("cannot access directory %s: %v", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	return nil
}

// runPipeline executes the selected mode end to end
func runPipeline(options types.WorkerOptions, args map[string]string) {
	startTime := time.Now()

	meta, err := metadata.NewTool()
	if err != nil {
		log.Fatalf("Error starting metadata tool: %v", err)
	}
	defer meta.Close()

	emitter := report.NewEmitter(os.Stdout)
	store := fingerprint.NewStore(options, meta, emitter)
	defer store.Close()

	// Open the optional run-report database with retry logic
	var db *sql.DB
	var runID int64
	if dbPath, ok := databasePath(args); ok {
		const maxRetries = 3
		for i := 0; i < maxRetries; i++ {
			db, err = database.InitDatabase(dbPath)
			if err == nil {
				break
			}
			if i < maxRetries-1 {
				log.Printf("Error initializing report database (attempt %d/%d): %v - retrying...",
					i+1, maxRetries, err)
				time.Sleep(time.Second * time.Duration(i+1))
			} else {
				log.Fatalf("Error initializing report database after %d attempts: %v", maxRetries, err)
			}
		}
		defer db.Close()

		runID, err = database.BeginRun(db, options)
		if err != nil {
			log.Fatalf("Error recording run: %v", err)
		}
		store.AttachReportDB(db, runID)
	}

	fmt.Fprintf(os.Stderr, "Using %d threads of maximum %d\n", options.NumThreads, runtime.NumCPU())

	// The load phase must fully precede any comparison worker
	if options.Mode == types.DuplicateWorker {
		if loaded := store.Load(); loaded == 0 {
			fmt.Fprintf(os.Stderr, "Warning: no fingerprints found under %s\n", options.SrcDirectory)
		}
	}

	if err := store.RunWorkers(); err != nil {
		log.Fatalf("Error running workers: %v", err)
	}

	if options.Mode == types.DuplicateWorker {
		if pairsPath, ok := args["pairs"]; ok && pairsPath != "" && pairsPath != "true" {
			if err := emitter.WritePairs(pairsPath); err != nil {
				log.Fatalf("Error writing pairs file: %v", err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %d match pairs to %s\n", emitter.MatchCount(), pairsPath)
		}
	}

	processed, skipped := store.Counts()
	if db != nil {
		if err := database.FinishRun(db, runID, processed, skipped); err != nil {
			logging.LogError("Cannot finalize run record: %v", err)
		}
	}

	duration := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nCompleted %s in %v: %d files processed, %d skipped",
		options.Mode, duration.Round(time.Second), processed, skipped)
	if options.Mode == types.DuplicateWorker {
		fmt.Fprintf(os.Stderr, ", %d matches reported", emitter.MatchCount())
	}
	fmt.Fprintln(os.Stderr)
}

// databasePath resolves the optional --database flag; a bare flag selects the
// default path next to the executable
func databasePath(args map[string]string) (string, bool) {
	v, ok := args["database"]
	if !ok {
		v, ok = args["db"]
	}
	if !ok {
		return "", false
	}
	if v == "" || v == "true" {
		return utils.GetDefaultDatabasePath(), true
	}
	return v, true
}
