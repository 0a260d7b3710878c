package runner

import (
	"fmt"
	"os/exec"
	"strings"
)

// probeInterpreter walks the candidate list in order and returns the
// first binary that responds to a version check. The result is cached
// on the Runner so repeated executions skip the probe.
func (r *Runner) probeInterpreter(candidates []string) (string, error) {
	r.probeOnce.Do(func() {
		if len(candidates) == 0 {
			r.probeErr = fmt.Errorf("no interpreter candidates configured")
			return
		}
		for _, name := range candidates {
			if exec.Command(name, "--version").Run() == nil {
				r.interpreter = name
				return
			}
		}
		r.probeErr = fmt.Errorf(
			"no working interpreter found (tried %s); make sure one is installed and on your PATH",
			strings.Join(candidates, ", "))
	})
	return r.interpreter, r.probeErr
}
