package pipeline

import "strings"

func splitLines(body string) []string {
	return strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func trim(body string) string {
	return strings.TrimSpace(body)
}
