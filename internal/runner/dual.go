// Package runner orchestrates the capture pipeline's two offline passes,
// pose estimation and beat analysis, over the same video.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kavyagupta/BeatSync/internal/beatio"
	"github.com/kavyagupta/BeatSync/pkg/beatsync"
	"github.com/kavyagupta/BeatSync/pkg/utils"
)

type DualConfig struct {
	VideoPath  string // Input video, required
	PoseBin    string // Pose-estimation binary, required
	PoseOutDir string // Directory for pose JSON output
	BeatsOut   string // Beats CSV destination
	LogDir     string // Per-process log files go here
}

// DualRun launches the pose-estimation binary and the beat analysis
// concurrently and waits for both. Each side logs to its own file named
// after the video stem. The first error from either side is returned;
// neither side is cancelled when the other fails, matching the offline
// batch semantics of the pipeline.
func DualRun(ctx context.Context, svc beatsync.Service, cfg DualConfig) error {
	if _, err := os.Stat(cfg.VideoPath); err != nil {
		return fmt.Errorf("video not found: %s", cfg.VideoPath)
	}
	if _, err := os.Stat(cfg.PoseBin); err != nil {
		return fmt.Errorf("pose binary not found: %s", cfg.PoseBin)
	}

	stem := strings.TrimSuffix(filepath.Base(cfg.VideoPath), filepath.Ext(cfg.VideoPath))
	if cfg.PoseOutDir == "" {
		cfg.PoseOutDir = filepath.Join("pose_output", stem)
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	if cfg.BeatsOut == "" {
		cfg.BeatsOut = filepath.Join("data", "beats", stem+".beats.csv")
	}
	for _, dir := range []string{cfg.PoseOutDir, cfg.LogDir} {
		if err := utils.MakeDir(dir); err != nil {
			return err
		}
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- runPose(ctx, cfg, stem)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- runAnalysis(ctx, svc, cfg)
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func runPose(ctx context.Context, cfg DualConfig, stem string) error {
	logFile, err := os.Create(filepath.Join(cfg.LogDir, stem+"_pose.log"))
	if err != nil {
		return fmt.Errorf("creating pose log: %w", err)
	}
	defer logFile.Close()

	cmd := exec.CommandContext(ctx, cfg.PoseBin,
		"--video", cfg.VideoPath,
		"--write_json", cfg.PoseOutDir,
		"--display", "0",
		"--render_pose", "0",
	)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pose estimation failed: %w", err)
	}
	return nil
}

func runAnalysis(ctx context.Context, svc beatsync.Service, cfg DualConfig) error {
	result, err := svc.AnalyzeFile(ctx, cfg.VideoPath)
	if err != nil {
		return fmt.Errorf("beat analysis failed: %w", err)
	}
	if err := beatio.WriteBeats(cfg.BeatsOut, result.Run.TempoBPM, result.BeatTimes); err != nil {
		return fmt.Errorf("writing beats: %w", err)
	}
	return nil
}
