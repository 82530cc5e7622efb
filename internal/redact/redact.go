// Package redact strips credential-shaped strings from code and diffs before
// they leave the machine.
package redact

import (
	"fmt"
	"path/filepath"
	"regexp"
)

type pattern struct {
	kind string
	re   *regexp.Regexp
}

// Ordering matters: provider-specific shapes run before the generic
// assignment heuristics so the placeholder names the real kind.
var patterns = []pattern{
	{"private-key", regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai-key", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"aws-key-id", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"bearer-token", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"api-key", regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`)},
	{"secret", regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`)},
}

// sensitiveNames are file base names whose whole content is withheld.
var sensitiveNames = []string{".env", ".env.*", "*.pem", "*.key", "id_rsa*", "credentials*"}

// Secrets replaces credential-shaped substrings with a kind-tagged
// placeholder. Reviews still see where a secret sat, just not its value.
func Secrets(text string) string {
	for _, p := range patterns {
		text = p.re.ReplaceAllString(text, fmt.Sprintf("[REDACTED:%s]", p.kind))
	}
	return text
}

// SensitivePath reports whether a file's content should be withheld entirely
// rather than scanned.
func SensitivePath(path string) bool {
	base := filepath.Base(path)
	for _, pat := range sensitiveNames {
		if ok, err := filepath.Match(pat, base); err == nil && ok {
			return true
		}
	}
	return false
}

// FileContent prepares file content for review: sensitive files are replaced
// wholesale, everything else is scanned for secrets.
func FileContent(content, path string) string {
	if SensitivePath(path) {
		return "[REDACTED: file withheld by path policy]\n"
	}
	return Secrets(content)
}
