package runner

import "time"

// Status classifies the outcome of a single execution.
type Status string

const (
	StatusSuccess     Status = "Success"
	StatusFileError   Status = "File Error"
	StatusLangError   Status = "Language Error"
	StatusCompileErr  Status = "Compilation Error"
	StatusRuntimeErr  Status = "Runtime Error"
	StatusTimeLimit   Status = "Time Limit Exceeded"
	StatusInternalErr Status = "Internal Error"
)

// DefaultTimeLimit bounds both the compile step and the execution step
// when a Request does not set its own limit.
const DefaultTimeLimit = 10 * time.Second

// Request describes one execution of a source file. It is not modified
// by the runner.
type Request struct {
	// SourcePath is the path to the source file to compile and run.
	SourcePath string

	// TimeLimit bounds the compile step and the execution step
	// independently. Zero or negative means DefaultTimeLimit.
	TimeLimit time.Duration

	// Input is fed to the program's standard input when HasInput is set.
	// HasInput distinguishes "no stdin attached" from "empty stdin".
	Input    string
	HasInput bool
}

// Result is the outcome of one execution. Exactly one Status is set per
// call; RuntimeMS is non-zero only if the execution phase actually began.
type Result struct {
	Status   Status   `json:"status"`
	Language Language `json:"language"`

	// RuntimeMS is the wall-clock time of the execution phase in
	// milliseconds (compile time excluded), 0.0 if it never started.
	RuntimeMS float64 `json:"runtime_ms"`

	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// OK reports whether the execution completed with exit code zero.
func (r Result) OK() bool { return r.Status == StatusSuccess }
