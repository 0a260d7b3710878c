package runner

import "os/exec"

// ToolInfo describes the external tools backing one language and
// whether the language is currently usable on this host.
type ToolInfo struct {
	Language  Language `json:"language"`
	Tools     []string `json:"tools"`
	Available bool     `json:"available"`
}

// ToolInfo reports, per supported language, which binaries the runner
// would invoke and whether they resolve on PATH.
func (r *Runner) ToolInfo() []ToolInfo {
	var infos []ToolInfo
	for _, lang := range Languages() {
		tc := r.toolchains[lang]
		info := ToolInfo{Language: lang}

		switch {
		case len(tc.Interpreters) > 0:
			info.Tools = tc.Interpreters
			for _, name := range tc.Interpreters {
				if _, err := exec.LookPath(name); err == nil {
					info.Available = true
					break
				}
			}
		default:
			info.Available = true
			if tc.Compiler != "" {
				info.Tools = append(info.Tools, tc.Compiler)
			}
			if tc.Runtime != "" {
				info.Tools = append(info.Tools, tc.Runtime)
			}
			for _, name := range info.Tools {
				if _, err := exec.LookPath(name); err != nil {
					info.Available = false
					break
				}
			}
		}
		infos = append(infos, info)
	}
	return infos
}
