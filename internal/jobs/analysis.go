package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agrexhq/agrex/internal/config"
	"github.com/agrexhq/agrex/internal/store"
	"github.com/agrexhq/agrex/pkg/models"
)

const defaultCropType = "generic"

// AnalysisExecutor launches the external analysis script for a data
// product. The script is started detached and never joined: a completed
// job means the script was successfully submitted, not that it finished.
// Its exit status and output are tracked out of band.
type AnalysisExecutor struct {
	store store.Store
	cfg   config.RunnerConfig

	// start is swapped in tests to avoid spawning real processes.
	start func(name string, args ...string) error
}

// NewAnalysisExecutor creates an AnalysisExecutor.
func NewAnalysisExecutor(st store.Store, cfg config.RunnerConfig) *AnalysisExecutor {
	return &AnalysisExecutor{store: st, cfg: cfg, start: startDetached}
}

func (e *AnalysisExecutor) Kind() string {
	return models.JobKindAnalysis
}

// Validate checks analysis parameters at launch time.
func (e *AnalysisExecutor) Validate(params map[string]any) error {
	if raw, ok := params["request_type"]; ok {
		if _, ok := numericParam(raw); !ok {
			return fmt.Errorf("%w: request_type must be a number", ErrValidation)
		}
	}
	return nil
}

// Execute builds the script argument list from the job and its data
// product and starts the script without waiting for it to exit.
func (e *AnalysisExecutor) Execute(ctx context.Context, job *models.Job) (map[string]any, error) {
	dp, err := e.store.GetDataProduct(ctx, job.InputRef)
	if err != nil {
		return nil, err
	}

	args, outputPath := e.buildArgs(job, dp)
	if err := e.start(e.cfg.Executable, args...); err != nil {
		return nil, fmt.Errorf("start analysis script: %w", err)
	}

	slog.Info("analysis script submitted",
		"job_id", job.ID,
		"script", e.cfg.ScriptPath,
		"input_path", dp.InputPath,
	)

	result := map[string]any{"submitted": true}
	if outputPath != "" {
		result["output_path"] = outputPath
	}
	return result, nil
}

// buildArgs assembles the positional argument list the analysis script
// expects: owner, job id, date range, input path, run mode, crop type,
// request type, and (for non-zero request types) a computed output path.
func (e *AnalysisExecutor) buildArgs(job *models.Job, dp *models.DataProduct) ([]string, string) {
	fromDate, toDate := "", ""
	if dp.FromDate != nil {
		fromDate = dp.FromDate.Format("2006-01-02")
	}
	if dp.ToDate != nil {
		toDate = dp.ToDate.Format("2006-01-02")
	}

	cropType := dp.CropType
	if cropType == "" {
		cropType = defaultCropType
	}

	requestType := 0
	if rt, ok := numericParam(job.Parameters["request_type"]); ok {
		requestType = int(rt)
	}

	args := []string{
		e.cfg.ScriptPath,
		job.OwnerID.String(),
		job.ID.String(),
		fromDate,
		toDate,
		dp.InputPath,
		e.cfg.Mode,
		cropType,
		strconv.Itoa(requestType),
	}

	outputPath := ""
	if requestType > 0 {
		outputPath = filepath.Join(e.cfg.OutputFolder, fmt.Sprintf("job_%s.tif", job.ID))
		args = append(args, outputPath)
	}
	return args, outputPath
}

// startDetached starts the command and reaps it in the background. The
// exit code is deliberately not surfaced to the job record.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		start := time.Now()
		err := cmd.Wait()
		slog.Info("analysis script exited",
			"cmd", name,
			"duration", time.Since(start).Round(time.Millisecond),
			"error", err,
		)
	}()
	return nil
}
