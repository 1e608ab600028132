package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kavyagupta/BeatSync/internal/beatio"
	"github.com/kavyagupta/BeatSync/internal/runner"
	"github.com/kavyagupta/BeatSync/pkg/beatsync"
	"github.com/kavyagupta/BeatSync/pkg/beatsync/align"
	"github.com/kavyagupta/BeatSync/pkg/logger"
	"github.com/kavyagupta/BeatSync/pkg/models"
	"github.com/kavyagupta/BeatSync/pkg/utils"
)

// Global flags
var (
	dbPath     string
	tempDir    string
	sampleRate int
	hopLength  int
)

func registerGlobalFlags(fs *flag.FlagSet) {
	fs.StringVar(&dbPath, "db", getEnvOrDefault("BEATSYNC_DB_PATH", "beatsync.sqlite3"), "Path to the SQLite database file")
	fs.StringVar(&tempDir, "temp", getEnvOrDefault("BEATSYNC_TEMP_DIR", "/tmp"), "Directory for temporary audio extraction files")
	fs.IntVar(&sampleRate, "rate", 22050, "Analysis sample rate in Hz")
	fs.IntVar(&hopLength, "hop", 512, "Analysis frame stride in samples")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// createService creates a new BeatSync service with configured options
func createService() (beatsync.Service, error) {
	return beatsync.NewService(
		beatsync.WithDBPath(dbPath),
		beatsync.WithTempDir(tempDir),
		beatsync.WithSampleRate(sampleRate),
		beatsync.WithHopLength(hopLength),
	)
}

func main() {
	log := logger.GetLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Debugf("Executing command: %s", command)

	switch command {
	case "analyze":
		handleAnalyze()
	case "align":
		handleAlign()
	case "dual":
		handleDual()
	case "list":
		handleList()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`BeatSync - beat detection and temporal alignment

Usage:
  beatsync analyze <media file> [-out beats.csv] [-demo-align] [-search ms]
  beatsync analyze -youtube <url> [-out beats.csv]
  beatsync align (-run <id> | -beats beats.csv) -events events.csv [-search ms]
  beatsync dual -video <file> -pose-bin <binary> [-pose-out dir] [-out beats.csv] [-logs dir]
  beatsync list
  beatsync delete <run id>

Global flags (every command): -db, -temp, -rate, -hop`)
}

func handleAnalyze() {
	log := logger.GetLogger()

	args := os.Args[2:]
	var inputPath string
	var flagArgs []string
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && inputPath == "" {
			inputPath = arg
		} else {
			flagArgs = append(flagArgs, args[i:]...)
			break
		}
	}

	cmd := flag.NewFlagSet("analyze", flag.ExitOnError)
	registerGlobalFlags(cmd)
	youtube := cmd.String("youtube", "", "YouTube URL to download and analyze (alternative to a local file)")
	out := cmd.String("out", "", "Output CSV path for beats (default <input>.beats.csv)")
	demoAlign := cmd.Bool("demo-align", false, "Run demo alignment with synthetic event times")
	search := cmd.Float64("search", align.DefaultSearchRangeMs, "Lag search range in ms for -demo-align")
	cmd.Parse(flagArgs)

	if inputPath == "" && *youtube == "" {
		log.Fatalf("analyze requires a media file or -youtube <url>")
	}

	service, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	ctx := context.Background()
	var result *models.AnalysisResult
	if *youtube != "" {
		result, err = service.AnalyzeYouTube(ctx, *youtube)
	} else {
		if _, statErr := os.Stat(inputPath); statErr != nil {
			log.Fatalf("input not found: %s", inputPath)
		}
		result, err = service.AnalyzeFile(ctx, inputPath)
	}
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	outPath := *out
	if outPath == "" {
		outPath = defaultBeatsPath(result.Run.SourcePath)
	}
	if err := beatio.WriteBeats(outPath, result.Run.TempoBPM, result.BeatTimes); err != nil {
		log.Fatalf("Failed to write beats: %v", err)
	}
	log.Infof("Wrote beats -> %s", outPath)
	log.Infof("Run ID: %s", result.Run.ID)

	if *demoAlign {
		runDemoAlign(service, result, *search)
	}
}

// runDemoAlign aligns a synthetic half-second event grid against the
// detected beats, a quick sanity check of the whole matcher/optimizer path.
func runDemoAlign(service beatsync.Service, result *models.AnalysisResult, searchMs float64) {
	log := logger.GetLogger()

	durationSec := float64(result.Run.DurationMs) / 1000.0
	limit := durationSec - 0.5
	if limit > 30.0 {
		limit = 30.0
	}
	var events []float64
	for t := 1.0; t < limit; t += 0.5 {
		events = append(events, t)
	}

	report, err := service.AlignTimes(events, result.BeatTimes, searchMs)
	if err != nil {
		log.Fatalf("Demo alignment failed: %v", err)
	}
	if report.EventCount == 0 {
		log.Warnf("[demo] no events or beats to align")
		return
	}
	log.Infof("[demo] Applied lag: %.1f ms", report.LagMs)
	log.Infof("[demo] Median |error|: %.1f ms", report.MedianAbsMs)
	log.Infof("[demo] Mean signed error (neg=ahead): %.1f ms", report.MeanSignedMs)
}

func defaultBeatsPath(source string) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if utils.IsYouTubeURL(source) {
		if id, err := utils.ExtractYouTubeID(source); err == nil {
			stem = id
		}
	}
	return stem + ".beats.csv"
}

func handleAlign() {
	log := logger.GetLogger()

	cmd := flag.NewFlagSet("align", flag.ExitOnError)
	registerGlobalFlags(cmd)
	runID := cmd.String("run", "", "Stored run ID to align against")
	beatsCSV := cmd.String("beats", "", "Beats CSV to align against (alternative to -run)")
	eventsCSV := cmd.String("events", "", "Events CSV with one timestamp (seconds) per row")
	search := cmd.Float64("search", align.DefaultSearchRangeMs, "Lag search range in ms")
	cmd.Parse(os.Args[2:])

	if *eventsCSV == "" {
		log.Fatalf("align requires -events <csv>")
	}
	if (*runID == "") == (*beatsCSV == "") {
		log.Fatalf("align requires exactly one of -run or -beats")
	}

	events, err := beatio.ReadEvents(*eventsCSV)
	if err != nil {
		log.Fatalf("Failed to read events: %v", err)
	}

	service, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	var report *models.AlignmentReport
	if *runID != "" {
		report, err = service.AlignEvents(context.Background(), *runID, events, *search)
	} else {
		var beats []float64
		if _, beats, err = beatio.ReadBeats(*beatsCSV); err == nil {
			report, err = service.AlignTimes(events, beats, *search)
		}
	}
	if err != nil {
		log.Fatalf("Alignment failed: %v", err)
	}

	if report.EventCount == 0 {
		log.Warnf("Nothing to align: empty event or beat sequence")
		return
	}
	log.Infof("Best lag: %.1f ms", report.LagMs)
	log.Infof("Median |error|: %.1f ms", report.MedianAbsMs)
	log.Infof("Mean signed error (neg=ahead): %.1f ms", report.MeanSignedMs)
}

func handleDual() {
	log := logger.GetLogger()

	cmd := flag.NewFlagSet("dual", flag.ExitOnError)
	registerGlobalFlags(cmd)
	video := cmd.String("video", "", "Input video path")
	poseBin := cmd.String("pose-bin", "", "Pose-estimation binary path")
	poseOut := cmd.String("pose-out", "", "Pose JSON output directory")
	out := cmd.String("out", "", "Beats CSV destination")
	logs := cmd.String("logs", "logs", "Directory for per-process log files")
	cmd.Parse(os.Args[2:])

	if *video == "" || *poseBin == "" {
		log.Fatalf("dual requires -video and -pose-bin")
	}

	service, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	err = runner.DualRun(context.Background(), service, runner.DualConfig{
		VideoPath:  *video,
		PoseBin:    *poseBin,
		PoseOutDir: *poseOut,
		BeatsOut:   *out,
		LogDir:     *logs,
	})
	if err != nil {
		log.Fatalf("Dual run failed: %v", err)
	}
	log.Infof("Dual run complete")
}

func handleList() {
	log := logger.GetLogger()

	cmd := flag.NewFlagSet("list", flag.ExitOnError)
	registerGlobalFlags(cmd)
	cmd.Parse(os.Args[2:])

	service, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	runs, err := service.ListRuns()
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return
	}

	fmt.Printf("%-36s  %8s  %6s  %9s  %s\n", "RUN ID", "TEMPO", "BEATS", "DURATION", "SOURCE")
	for _, r := range runs {
		fmt.Printf("%-36s  %8.1f  %6d  %8.1fs  %s\n",
			r.ID, r.TempoBPM, r.BeatCount, float64(r.DurationMs)/1000.0, r.SourcePath)
	}
}

func handleDelete() {
	log := logger.GetLogger()

	cmd := flag.NewFlagSet("delete", flag.ExitOnError)
	registerGlobalFlags(cmd)
	cmd.Parse(os.Args[2:])

	if cmd.NArg() < 1 {
		log.Fatalf("delete requires a run ID")
	}
	runID := cmd.Arg(0)

	service, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	if err := service.DeleteRun(runID); err != nil {
		log.Fatalf("Failed to delete run: %v", err)
	}
	log.Infof("Deleted run %s", runID)
}
