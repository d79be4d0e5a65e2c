package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/flowkit/flowkit/internal/domain"
	domainerrors "github.com/flowkit/flowkit/internal/domain/errors"
	"github.com/flowkit/flowkit/internal/infrastructure/callable"
	"github.com/flowkit/flowkit/internal/infrastructure/metadata"
)

// ClusterScheduler generates and submits one script per job, in
// topological order, chaining them via the cluster's dependency flag.
type ClusterScheduler struct {
	cfg     ClusterConfig
	runDir  string
	logDir  string
	runName string

	// ids assigns the preferred display identifier to each job: its name
	// if unique within the run, else a stable numeric fallback.
	ids map[domain.JobID]string

	// clusterIDs holds the scheduler-assigned identifiers returned by the
	// submission command, keyed by JobID, populated as submission
	// proceeds in topological order.
	clusterIDs map[domain.JobID]string
}

// NewClusterScheduler creates the run directory (<BaseDir>/<RunName>/ and
// its logs/ subdirectory) and writes the mandatory metadata.json.
func NewClusterScheduler(cfg ClusterConfig, args []string, pipeline, version string) (*ClusterScheduler, error) {
	cfg = cfg.withDefaults()

	runName := cfg.RunName
	if runName == "" {
		runName = time.Now().Format("060102_150405")
	}

	runDir, err := filepath.Abs(filepath.Join(cfg.BaseDir, runName))
	if err != nil {
		return nil, err
	}
	logDir := filepath.Join(runDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}

	if err := metadata.Write(runDir, metadata.Metadata{
		Name:     runName,
		Datetime: time.Now().Unix(),
		Args:     args,
		Pipeline: pipeline,
		Version:  version,
	}); err != nil {
		return nil, fmt.Errorf("writing metadata.json: %w", err)
	}

	return &ClusterScheduler{
		cfg:        cfg,
		runDir:     runDir,
		logDir:     logDir,
		runName:    runName,
		ids:        make(map[domain.JobID]string),
		clusterIDs: make(map[domain.JobID]string),
	}, nil
}

// RunDir returns the run's directory.
func (s *ClusterScheduler) RunDir() string { return s.runDir }

// Run prunes the graph reachable from roots, computes a topological
// order, then generates and submits each job's script in that order,
// propagating cluster-assigned ids into each child's dependency
// directive. It returns the cluster ids keyed by job name. If any
// submission fails, it stops immediately and returns a SubmissionFailed
// error, leaving already-generated files in place for diagnosis.
func (s *ClusterScheduler) Run(ctx context.Context, roots ...*domain.Job) (map[string]string, error) {
	if err := CheckAcyclic(roots...); err != nil {
		return nil, err
	}

	pruned := Prune(roots...)

	order, err := TopologicalOrder(pruned...)
	if err != nil {
		return nil, err
	}

	s.assignDisplayIDs(order)

	if err := s.writePostconditionsManifest(order); err != nil {
		return nil, err
	}

	results := make(map[string]string, len(order))
	var identifiers []string

	for _, job := range order {
		clusterID, err := s.submitOne(ctx, job)
		if err != nil {
			_ = s.writeIdentifiers(identifiers)
			return nil, err
		}
		s.clusterIDs[job.ID] = clusterID
		results[job.Name()] = clusterID
		identifiers = append(identifiers, clusterID)
		s.cfg.Observer.OnJobSubmitted(job, clusterID)
	}

	if err := s.writeIdentifiers(identifiers); err != nil {
		return nil, err
	}

	return results, nil
}

// assignDisplayIDs picks each job's filename/log identifier: its name if
// unique within the run, else a numeric fallback assigned in
// encounter order.
func (s *ClusterScheduler) assignDisplayIDs(order []*domain.Job) {
	nameCount := make(map[string]int)
	for _, job := range order {
		nameCount[job.Name()]++
	}

	next := 0
	for _, job := range order {
		if nameCount[job.Name()] == 1 {
			s.ids[job.ID] = job.Name()
		} else {
			s.ids[job.ID] = strconv.Itoa(next)
			next++
		}
	}
}

func (s *ClusterScheduler) submitOne(ctx context.Context, job *domain.Job) (string, error) {
	displayID := s.ids[job.ID]

	script, err := generateScript(job, s.cfg, displayID, s.logDir, s.clusterIDs)
	if err != nil {
		return "", err
	}

	scriptPath := filepath.Join(s.runDir, displayID+".sh")
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		return "", fmt.Errorf("writing %s: %w", scriptPath, err)
	}

	payload, err := callable.Encode(callable.Payload{Token: job.Token, IsArray: job.IsArray()})
	if err != nil {
		return "", err
	}
	pklPath := filepath.Join(s.runDir, displayID+".pkl")
	if err := os.WriteFile(pklPath, payload, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", pklPath, err)
	}

	cmd := exec.CommandContext(ctx, s.cfg.SubmitCommand, scriptPath)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stdout
	if err := cmd.Run(); err != nil {
		return "", &domainerrors.SubmissionFailedError{Job: job.Name(), Script: scriptPath, Cause: err}
	}

	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	return "", &domainerrors.SubmissionFailedError{
		Job: job.Name(), Script: scriptPath,
		Cause: fmt.Errorf("submission command produced no job id on stdout"),
	}
}

func (s *ClusterScheduler) writeIdentifiers(ids []string) error {
	return os.WriteFile(filepath.Join(s.runDir, "job_identifiers"), []byte(strings.Join(ids, "\n")+"\n"), 0o644)
}

// writePostconditionsManifest serializes every job's postcondition count
// for an external administrative tool's progress computation. The
// predicates themselves are Go closures and can't be serialized; what's
// recorded is the per-job shape the tool needs (name, whether it has
// postconditions, array size) so it can distinguish "done" from
// "pending" jobs by re-reading logs/exit codes.
func (s *ClusterScheduler) writePostconditionsManifest(jobs []*domain.Job) error {
	var b strings.Builder
	for _, job := range jobs {
		arraySize := 0
		if job.IsArray() {
			arraySize = job.Array().Len()
		}
		fmt.Fprintf(&b, "%s\t%s\t%d\t%d\n", s.ids[job.ID], job.Name(), len(job.Postconditions()), arraySize)
	}
	return os.WriteFile(filepath.Join(s.runDir, "postconditions"), []byte(b.String()), 0o644)
}
