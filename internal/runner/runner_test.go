package runner_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/michaelbrown/runcheck/internal/runner"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func needTool(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not on PATH", name)
		}
	}
}

func needPython(t *testing.T) {
	t.Helper()
	for _, name := range []string{"python3", "python"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no python interpreter on PATH")
}

// assertNoArtifacts checks that the per-call temp directory did not
// survive the call.
func assertNoArtifacts(t *testing.T, sourceDir string) {
	t.Helper()
	tempDir := filepath.Join(sourceDir, runner.TempDirName)
	if _, err := os.Stat(tempDir); !os.IsNotExist(err) {
		entries, _ := os.ReadDir(tempDir)
		t.Errorf("%s left behind with %d entries", tempDir, len(entries))
	}
}

func TestUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "notes.txt", "hello")

	res := runner.New().Execute(context.Background(), runner.Request{SourcePath: path})

	if res.Status != runner.StatusLangError {
		t.Fatalf("status = %q, want %q", res.Status, runner.StatusLangError)
	}
	if res.Language != runner.LangUnknown {
		t.Errorf("language = %q, want %q", res.Language, runner.LangUnknown)
	}
	if res.RuntimeMS != 0 {
		t.Errorf("runtime = %v, want 0", res.RuntimeMS)
	}
	assertNoArtifacts(t, dir)
}

func TestMissingFile(t *testing.T) {
	res := runner.New().Execute(context.Background(), runner.Request{
		SourcePath: filepath.Join(t.TempDir(), "gone.py"),
	})

	if res.Status != runner.StatusFileError {
		t.Fatalf("status = %q, want %q", res.Status, runner.StatusFileError)
	}
	if res.Language != runner.LangPython {
		t.Errorf("language = %q, want %q", res.Language, runner.LangPython)
	}
}

func TestEmptyFile(t *testing.T) {
	for _, content := range []string{"", "   \n\t\n  "} {
		dir := t.TempDir()
		path := writeSource(t, dir, "empty.py", content)

		res := runner.New().Execute(context.Background(), runner.Request{SourcePath: path})

		if res.Status != runner.StatusFileError {
			t.Fatalf("content %q: status = %q, want %q", content, res.Status, runner.StatusFileError)
		}
		if res.RuntimeMS != 0 {
			t.Errorf("content %q: runtime = %v, want 0", content, res.RuntimeMS)
		}
		assertNoArtifacts(t, dir)
	}
}

func TestBinaryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.c")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0o644); err != nil {
		t.Fatal(err)
	}

	res := runner.New().Execute(context.Background(), runner.Request{SourcePath: path})

	if res.Status != runner.StatusFileError {
		t.Fatalf("status = %q, want %q", res.Status, runner.StatusFileError)
	}
	assertNoArtifacts(t, dir)
}

func TestPythonEcho(t *testing.T) {
	needPython(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "echo.py", "print(input())\n")

	res := runner.New().Execute(context.Background(), runner.Request{
		SourcePath: path,
		Input:      "hello",
		HasInput:   true,
	})

	if res.Status != runner.StatusSuccess {
		t.Fatalf("status = %q (stderr %q), want %q", res.Status, res.Stderr, runner.StatusSuccess)
	}
	if res.Stdout != "hello" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "hello")
	}
	if res.RuntimeMS <= 0 {
		t.Errorf("runtime = %v, want > 0", res.RuntimeMS)
	}
	assertNoArtifacts(t, dir)
}

func TestPythonNonZeroExit(t *testing.T) {
	needPython(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "fail.py", "import sys\nsys.exit(3)\n")

	res := runner.New().Execute(context.Background(), runner.Request{SourcePath: path})

	if res.Status != runner.StatusRuntimeErr {
		t.Fatalf("status = %q, want %q", res.Status, runner.StatusRuntimeErr)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	// stderr was empty, so the runner synthesizes a message.
	if !strings.Contains(res.Stderr, "3") {
		t.Errorf("stderr = %q, want it to name the exit code", res.Stderr)
	}
}

func TestTimeLimitExceeded(t *testing.T) {
	needPython(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "spin.py", "while True:\n    pass\n")

	limit := 300 * time.Millisecond
	start := time.Now()
	res := runner.New().Execute(context.Background(), runner.Request{
		SourcePath: path,
		TimeLimit:  limit,
	})
	wall := time.Since(start)

	if res.Status != runner.StatusTimeLimit {
		t.Fatalf("status = %q (stderr %q), want %q", res.Status, res.Stderr, runner.StatusTimeLimit)
	}
	if res.RuntimeMS < float64(limit.Milliseconds())*0.8 {
		t.Errorf("runtime = %.2fms, want approximately %dms", res.RuntimeMS, limit.Milliseconds())
	}
	// The call must return shortly after the limit: the child is killed,
	// not waited out.
	if wall > limit+5*time.Second {
		t.Errorf("Execute took %v, the runaway process was not killed", wall)
	}
	if !strings.Contains(res.Stderr, limit.String()) {
		t.Errorf("stderr = %q, want it to name the limit", res.Stderr)
	}
	assertNoArtifacts(t, dir)
}

func TestInterpreterProbeFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "hello.py", "print('hi')\n")

	chains := map[runner.Language]runner.Toolchain{
		runner.LangPython: {Interpreters: []string{"runcheck-no-such-python3", "runcheck-no-such-python"}},
	}
	res := runner.NewWithToolchains(chains).Execute(context.Background(), runner.Request{SourcePath: path})

	if res.Status != runner.StatusRuntimeErr {
		t.Fatalf("status = %q, want %q", res.Status, runner.StatusRuntimeErr)
	}
	if res.RuntimeMS != 0 {
		t.Errorf("runtime = %v, want 0 (execution never started)", res.RuntimeMS)
	}
	for _, name := range []string{"runcheck-no-such-python3", "runcheck-no-such-python"} {
		if !strings.Contains(res.Stderr, name) {
			t.Errorf("stderr = %q, want it to name %s", res.Stderr, name)
		}
	}
}

func TestCCompileError(t *testing.T) {
	needTool(t, "gcc")
	dir := t.TempDir()
	path := writeSource(t, dir, "broken.c", "int main( { return 0; }\n")

	res := runner.New().Execute(context.Background(), runner.Request{SourcePath: path})

	if res.Status != runner.StatusCompileErr {
		t.Fatalf("status = %q, want %q", res.Status, runner.StatusCompileErr)
	}
	if res.Stdout != "" {
		t.Errorf("stdout = %q, want empty (execution never ran)", res.Stdout)
	}
	if res.RuntimeMS != 0 {
		t.Errorf("runtime = %v, want 0", res.RuntimeMS)
	}
	if res.Stderr == "" {
		t.Error("stderr empty, want compiler diagnostics")
	}
	assertNoArtifacts(t, dir)
}

func TestCEcho(t *testing.T) {
	needTool(t, "gcc")
	dir := t.TempDir()
	path := writeSource(t, dir, "echo.c", `#include <stdio.h>
int main(void) {
    char buf[256];
    if (fgets(buf, sizeof buf, stdin)) {
        printf("%s", buf);
    }
    return 0;
}
`)

	res := runner.New().Execute(context.Background(), runner.Request{
		SourcePath: path,
		Input:      "hello",
		HasInput:   true,
	})

	if res.Status != runner.StatusSuccess {
		t.Fatalf("status = %q (stderr %q), want %q", res.Status, res.Stderr, runner.StatusSuccess)
	}
	if res.Stdout != "hello" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "hello")
	}
	if res.Language != runner.LangC {
		t.Errorf("language = %q, want %q", res.Language, runner.LangC)
	}
	assertNoArtifacts(t, dir)
}

func TestCPPHello(t *testing.T) {
	needTool(t, "g++")
	dir := t.TempDir()
	path := writeSource(t, dir, "hello.cc", `#include <iostream>
int main() {
    std::cout << "hello from cpp" << std::endl;
    return 0;
}
`)

	res := runner.New().Execute(context.Background(), runner.Request{SourcePath: path})

	if res.Status != runner.StatusSuccess {
		t.Fatalf("status = %q (stderr %q), want %q", res.Status, res.Stderr, runner.StatusSuccess)
	}
	if res.Stdout != "hello from cpp" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if res.Language != runner.LangCPP {
		t.Errorf("language = %q, want %q", res.Language, runner.LangCPP)
	}
	assertNoArtifacts(t, dir)
}

func TestJavaEcho(t *testing.T) {
	needTool(t, "javac", "java")
	dir := t.TempDir()
	path := writeSource(t, dir, "Echo.java", `import java.util.Scanner;

public class Echo {
    public static void main(String[] args) {
        Scanner in = new Scanner(System.in);
        System.out.println(in.nextLine());
    }
}
`)

	res := runner.New().Execute(context.Background(), runner.Request{
		SourcePath: path,
		Input:      "hello",
		HasInput:   true,
	})

	if res.Status != runner.StatusSuccess {
		t.Fatalf("status = %q (stderr %q), want %q", res.Status, res.Stderr, runner.StatusSuccess)
	}
	if res.Stdout != "hello" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "hello")
	}
	assertNoArtifacts(t, dir)
}

func TestJavaCompileErrorCleansUp(t *testing.T) {
	needTool(t, "javac")
	dir := t.TempDir()
	path := writeSource(t, dir, "Broken.java", "public class Broken { this does not compile }\n")

	res := runner.New().Execute(context.Background(), runner.Request{SourcePath: path})

	if res.Status != runner.StatusCompileErr {
		t.Fatalf("status = %q, want %q", res.Status, runner.StatusCompileErr)
	}
	assertNoArtifacts(t, dir)
}

func TestIdempotence(t *testing.T) {
	needPython(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "stable.py", "print('same every time')\n")

	r := runner.New()
	req := runner.Request{SourcePath: path, TimeLimit: 5 * time.Second}

	first := r.Execute(context.Background(), req)
	second := r.Execute(context.Background(), req)

	if first.Status != second.Status {
		t.Errorf("status differs: %q vs %q", first.Status, second.Status)
	}
	if first.Stdout != second.Stdout {
		t.Errorf("stdout differs: %q vs %q", first.Stdout, second.Stdout)
	}
	if first.Stderr != second.Stderr {
		t.Errorf("stderr differs: %q vs %q", first.Stderr, second.Stderr)
	}
}

func TestCanceledContext(t *testing.T) {
	needPython(t)
	dir := t.TempDir()
	path := writeSource(t, dir, "sleep.py", "import time\ntime.sleep(30)\n")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	res := runner.New().Execute(ctx, runner.Request{SourcePath: path, TimeLimit: time.Minute})

	if res.Status != runner.StatusInternalErr {
		t.Fatalf("status = %q, want %q (cancellation is not the configured bound)", res.Status, runner.StatusInternalErr)
	}
	assertNoArtifacts(t, dir)
}
