// Package runner executes interview code snippets on the host toolchain.
// Execution is best-effort sandboxing by timeout only; the service is meant
// to run inside a container that provides the real isolation boundary.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/devmeet/devmeet/internal/infrastructure/configs"
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
	"github.com/devmeet/devmeet/internal/infrastructure/metrics"
)

const (
	LanguageJavaScript = "javascript"
	LanguageCPP        = "cpp"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

type Request struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Stdin    string `json:"input,omitempty"`
}

type Result struct {
	Stdout   string `json:"output"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exitCode"`
}

type Service struct {
	scriptTimeout  time.Duration
	compileTimeout time.Duration
	runTimeout     time.Duration
	logger         logging.Logger
}

func NewService(cfg configs.RunnerConfig, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Service{
		scriptTimeout:  cfg.ScriptTimeout,
		compileTimeout: cfg.CompileTimeout,
		runTimeout:     cfg.RunTimeout,
		logger:         logger,
	}
	if s.scriptTimeout <= 0 {
		s.scriptTimeout = 5 * time.Second
	}
	if s.compileTimeout <= 0 {
		s.compileTimeout = 10 * time.Second
	}
	if s.runTimeout <= 0 {
		s.runTimeout = 5 * time.Second
	}
	return s
}

// Run executes the snippet and returns whatever the process produced.
// A non-zero exit is not an error at this layer; callers decide how to
// surface it.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, errors.New("code is required")
	}

	metrics.RunnerExecutionsTotal.WithLabelValues(req.Language).Inc()

	switch req.Language {
	case LanguageJavaScript:
		return s.runJavaScript(ctx, req)
	case LanguageCPP:
		return s.runCPP(ctx, req)
	default:
		return nil, ErrUnsupportedLanguage
	}
}

func (s *Service) runJavaScript(ctx context.Context, req Request) (*Result, error) {
	dir, err := os.MkdirTemp("", "devmeet-run-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	scriptPath := filepath.Join(dir, "main.js")
	if err := os.WriteFile(scriptPath, []byte(req.Code), 0o600); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, s.scriptTimeout)
	defer cancel()

	return s.execute(exec.CommandContext(runCtx, "node", scriptPath), req.Stdin)
}

func (s *Service) runCPP(ctx context.Context, req Request) (*Result, error) {
	dir, err := os.MkdirTemp("", "devmeet-run-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	srcPath := filepath.Join(dir, "main.cpp")
	binPath := filepath.Join(dir, "main.out")
	if err := os.WriteFile(srcPath, []byte(req.Code), 0o600); err != nil {
		return nil, err
	}

	compileCtx, cancel := context.WithTimeout(ctx, s.compileTimeout)
	defer cancel()

	compileResult, err := s.execute(exec.CommandContext(compileCtx, "g++", srcPath, "-o", binPath), "")
	if err != nil {
		return nil, err
	}
	if compileResult.ExitCode != 0 {
		// Compile diagnostics go back to the caller as the run output.
		return compileResult, nil
	}

	runCtx, runCancel := context.WithTimeout(ctx, s.runTimeout)
	defer runCancel()

	return s.execute(exec.CommandContext(runCtx, binPath), req.Stdin)
}

func (s *Service) execute(cmd *exec.Cmd, stdin string) (*Result, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	err := cmd.Run()

	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		s.logger.Errorf("runner execution failed: %v", err)
		return nil, err
	}

	return result, nil
}
