package provider

import (
	"log/slog"
	"os"
	"strings"
)

// FallbackSystemPrompt is used when no prompt file is configured or the
// configured one cannot be read.
const FallbackSystemPrompt = `You are an AI coding assistant specialized in building modern fullstack web applications.
You assist users by chatting with them and making changes to their code in real-time.

Constraints:
- Do not delete files entirely; prefer edits.
- Keep changes minimal and focused.
- Use UTF-8 encoding.
- Follow modern development best practices.`

// LoadSystemPrompt reads the prompt file at path, falling back to the
// built-in prompt when path is empty or unreadable.
func LoadSystemPrompt(path string, logger *slog.Logger) string {
	if path == "" {
		return FallbackSystemPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("system prompt file not readable, using fallback", "path", path, "error", err)
		return FallbackSystemPrompt
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		logger.Warn("system prompt file empty, using fallback", "path", path)
		return FallbackSystemPrompt
	}
	logger.Info("system prompt loaded", "path", path, "chars", len(prompt))
	return prompt
}
