package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TempDirName is the per-call artifact directory created next to the
// source file. It holds at most one compiled binary or one class
// directory for the duration of a call and is removed when empty.
const TempDirName = "temp_files"

// Runner executes source files. It holds no cross-call state beyond the
// cached interpreter probe, so a single Runner can serve any number of
// sequential executions.
type Runner struct {
	toolchains map[Language]Toolchain

	probeOnce   sync.Once
	interpreter string
	probeErr    error
}

// New creates a Runner with the default toolchains.
func New() *Runner {
	return &Runner{toolchains: defaultToolchains()}
}

// NewWithToolchains creates a Runner using the given per-language tools
// (see LoadToolchains).
func NewWithToolchains(chains map[Language]Toolchain) *Runner {
	return &Runner{toolchains: chains}
}

// Toolchains returns the per-language tool table in use.
func (r *Runner) Toolchains() map[Language]Toolchain {
	return r.toolchains
}

// runSpec is a fully resolved run command plus the cleanup for any
// artifacts its preparation produced.
type runSpec struct {
	argv    []string
	cleanup func()
}

// Execute compiles (if needed) and runs the requested source file.
// It never returns an error: every failure mode is reported through
// Result.Status and Result.Stderr. The context is honored in addition
// to the request's time limit; caller cancellation aborts the child
// process the same way a timeout would.
func (r *Runner) Execute(ctx context.Context, req Request) Result {
	limit := req.TimeLimit
	if limit <= 0 {
		limit = DefaultTimeLimit
	}

	lang := Detect(req.SourcePath)
	if lang == LangUnknown {
		return Result{
			Status:   StatusLangError,
			Language: LangUnknown,
			Stderr: fmt.Sprintf("unsupported file extension %q; supported: %s",
				filepath.Ext(req.SourcePath), strings.Join(Extensions(), ", ")),
		}
	}

	res := Result{Language: lang}

	// Preconditions, checked in order before any process is spawned.
	if _, err := os.Stat(req.SourcePath); err != nil {
		res.Status = StatusFileError
		res.Stderr = fmt.Sprintf("file not found at %s", req.SourcePath)
		return res
	}
	data, err := os.ReadFile(req.SourcePath)
	if err != nil {
		res.Status = StatusFileError
		res.Stderr = fmt.Sprintf("reading file: %v", err)
		return res
	}
	if !utf8.Valid(data) {
		res.Status = StatusFileError
		res.Stderr = fmt.Sprintf("file %s is not readable as text", req.SourcePath)
		return res
	}
	if strings.TrimSpace(string(data)) == "" {
		res.Status = StatusFileError
		res.Stderr = "file is empty or contains only whitespace"
		return res
	}

	spec, cleanup, fail := r.prepare(ctx, lang, req.SourcePath, limit)
	defer cleanup()
	if fail != nil {
		res.Status = fail.Status
		res.Stderr = fail.Stderr
		return res
	}

	r.run(ctx, spec, req, limit, &res)
	return res
}

// prepare resolves the run command for a language, compiling first when
// the language requires it. The returned cleanup is never nil and must
// run regardless of which branch the caller takes afterwards.
func (r *Runner) prepare(ctx context.Context, lang Language, source string, limit time.Duration) (*runSpec, func(), *Result) {
	noop := func() {}
	tc := r.toolchains[lang]

	switch lang {
	case LangPython:
		interp, err := r.probeInterpreter(tc.Interpreters)
		if err != nil {
			return nil, noop, &Result{Status: StatusRuntimeErr, Stderr: err.Error()}
		}
		return &runSpec{argv: []string{interp, source}}, noop, nil

	case LangC, LangCPP:
		tempDir, err := ensureTempDir(source)
		if err != nil {
			return nil, noop, &Result{Status: StatusInternalErr, Stderr: err.Error()}
		}
		binPath := filepath.Join(tempDir, fmt.Sprintf("run-%s.out", uuid.NewString()))
		cleanup := func() {
			os.Remove(binPath)
			removeDirIfEmpty(tempDir)
		}
		if fail := compile(ctx, limit, lang, tc.Compiler, source, "-o", binPath); fail != nil {
			return nil, cleanup, fail
		}
		return &runSpec{argv: []string{binPath}}, cleanup, nil

	case LangJava:
		tempDir, err := ensureTempDir(source)
		if err != nil {
			return nil, noop, &Result{Status: StatusInternalErr, Stderr: err.Error()}
		}
		classDir, err := os.MkdirTemp(tempDir, "classes-")
		if err != nil {
			removeDirIfEmpty(tempDir)
			return nil, noop, &Result{Status: StatusInternalErr, Stderr: fmt.Sprintf("creating class directory: %v", err)}
		}
		cleanup := func() {
			os.RemoveAll(classDir)
			removeDirIfEmpty(tempDir)
		}
		if fail := compile(ctx, limit, lang, tc.Compiler, "-d", classDir, source); fail != nil {
			return nil, cleanup, fail
		}
		// Java requires the public class name to match the file name.
		className := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		return &runSpec{argv: []string{tc.Runtime, "-cp", classDir, className}}, cleanup, nil
	}

	return nil, noop, &Result{Status: StatusInternalErr, Stderr: fmt.Sprintf("no toolchain for language %q", lang)}
}

// compile runs a compiler invocation under its own time limit and maps
// every failure to a terminal Result. A nil return means the compile
// step succeeded.
func compile(ctx context.Context, limit time.Duration, lang Language, argv ...string) *Result {
	cctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	cmd := exec.CommandContext(cctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	switch {
	case err == nil:
		return nil
	case cctx.Err() == context.DeadlineExceeded:
		return &Result{
			Status: StatusCompileErr,
			Stderr: fmt.Sprintf("compilation exceeded time limit of %s", limit),
		}
	case errors.Is(err, exec.ErrNotFound):
		return &Result{
			Status: StatusRuntimeErr,
			Stderr: fmt.Sprintf("%s not found; make sure the %s toolchain is installed and on your PATH", argv[0], lang),
		}
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Compiler diagnostics are surfaced verbatim.
			return &Result{Status: StatusCompileErr, Stderr: stderr.String()}
		}
		return &Result{Status: StatusInternalErr, Stderr: fmt.Sprintf("running compiler: %v", err)}
	}
}

// run spawns the resolved run command, feeds stdin, captures output and
// enforces the wall-clock limit, filling res in place.
func (r *Runner) run(ctx context.Context, spec *runSpec, req Request, limit time.Duration, res *Result) {
	rctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	cmd := exec.CommandContext(rctx, spec.argv[0], spec.argv[1:]...)
	// CommandContext kills the process outright on expiry; WaitDelay
	// keeps Wait from hanging if a grandchild inherits the pipes.
	cmd.WaitDelay = time.Second
	if req.HasInput {
		cmd.Stdin = strings.NewReader(req.Input)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if cmd.Process != nil {
		res.RuntimeMS = float64(elapsed.Microseconds()) / 1000.0
	}
	res.Stdout = strings.TrimSpace(stdout.String())
	res.Stderr = strings.TrimSpace(stderr.String())

	switch {
	case err == nil:
		res.Status = StatusSuccess
	case rctx.Err() == context.DeadlineExceeded:
		res.Status = StatusTimeLimit
		res.ExitCode = -1
		res.Stderr = fmt.Sprintf("execution exceeded time limit of %s", limit)
	case ctx.Err() != nil:
		res.Status = StatusInternalErr
		res.Stderr = fmt.Sprintf("execution canceled: %v", ctx.Err())
	default:
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.Status = StatusRuntimeErr
			res.ExitCode = exitErr.ExitCode()
			if res.Stderr == "" {
				res.Stderr = fmt.Sprintf("process exited with non-zero status code %d", res.ExitCode)
			}
		case errors.Is(err, exec.ErrNotFound):
			res.Status = StatusRuntimeErr
			res.RuntimeMS = 0
			res.Stderr = fmt.Sprintf("%s not found; make sure the %s toolchain is installed and on your PATH",
				spec.argv[0], res.Language)
		default:
			res.Status = StatusInternalErr
			res.Stderr = fmt.Sprintf("unexpected error during execution: %v", err)
		}
	}
}

// ensureTempDir creates the artifact directory next to the source file.
func ensureTempDir(source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolving source path: %v", err)
	}
	tempDir := filepath.Join(filepath.Dir(abs), TempDirName)
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", fmt.Errorf("creating temp directory: %v", err)
	}
	return tempDir, nil
}

// removeDirIfEmpty deletes dir when nothing is left inside it, so a
// shared temp_files directory survives only while another invocation
// still has artifacts in it.
func removeDirIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) == 0 {
		os.Remove(dir)
	}
}
