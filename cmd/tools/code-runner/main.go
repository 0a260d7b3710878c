package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/michaelbrown/runcheck/internal/runner"
)

func main() {
	s := server.NewMCPServer("runcheck-code-runner", "0.1.0")

	var langs []string
	for _, lang := range runner.Languages() {
		langs = append(langs, string(lang))
	}

	s.AddTool(mcp.Tool{
		Name: "code_run",
		Description: fmt.Sprintf(
			"Execute code with the host toolchains under a time limit. Supported languages: %s. Java snippets must declare class Main.",
			strings.Join(langs, ", ")),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "Programming language (python, c, cpp, java)",
				},
				"code": map[string]any{
					"type":        "string",
					"description": "Source code to execute",
				},
				"stdin": map[string]any{
					"type":        "string",
					"description": "Standard input to provide to the program (optional)",
				},
			},
			Required: []string{"language", "code"},
		},
	}, handleCodeRun)

	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("server error: %v\n", err)
	}
}

func handleCodeRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return errResult("error: invalid arguments"), nil
	}

	language, _ := args["language"].(string)
	code, _ := args["code"].(string)
	stdin, hasStdin := args["stdin"].(string)

	if language == "" || code == "" {
		return errResult("error: 'language' and 'code' are required"), nil
	}

	lang := runner.Language(language)
	ext := runner.ExtensionFor(lang)
	if ext == "" {
		return errResult(fmt.Sprintf("error: unsupported language %q", language)), nil
	}

	// Write the snippet to its own directory so compile artifacts stay
	// out of the caller's tree.
	tmpDir, err := os.MkdirTemp("", "runcheck-snippet-*")
	if err != nil {
		return errResult(fmt.Sprintf("error: creating temp dir: %v", err)), nil
	}
	defer os.RemoveAll(tmpDir)

	name := "snippet" + ext
	if lang == runner.LangJava {
		// The runner derives the class name from the file name.
		name = "Main.java"
	}
	sourcePath := filepath.Join(tmpDir, name)
	if err := os.WriteFile(sourcePath, []byte(code), 0o644); err != nil {
		return errResult(fmt.Sprintf("error: writing source file: %v", err)), nil
	}

	res := runner.New().Execute(ctx, runner.Request{
		SourcePath: sourcePath,
		Input:      stdin,
		HasInput:   hasStdin,
	})

	var output strings.Builder
	if res.Stdout != "" {
		output.WriteString(res.Stdout)
	}
	if res.Stderr != "" {
		if output.Len() > 0 {
			output.WriteString("\n")
		}
		output.WriteString("STDERR:\n" + res.Stderr)
	}
	if !res.OK() {
		if output.Len() > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("status: %s (%.2fms)", res.Status, res.RuntimeMS))
	}

	text := output.String()
	if len(text) > 4000 {
		text = text[:4000] + "\n... (output truncated)"
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: !res.OK(),
	}, nil
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
