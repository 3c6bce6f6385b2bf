package valueobjects

import (
	"strings"
	"unicode/utf8"

	"mindmap-backend/domain/config"
)

// NormalizeLabel trims surrounding whitespace and caps the label at the
// configured rune length. Empty labels are allowed.
func NormalizeLabel(text string, cfg *config.DomainConfig) string {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)
	if cfg.MaxLabelLength > 0 && utf8.RuneCountInString(text) > cfg.MaxLabelLength {
		runes := []rune(text)
		text = string(runes[:cfg.MaxLabelLength])
	}
	return text
}

// IsMeaningfulLabel reports whether a label carries user content, i.e. it
// is neither blank nor the placeholder given to new nodes
func IsMeaningfulLabel(text string, cfg *config.DomainConfig) bool {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	return !strings.EqualFold(trimmed, cfg.PlaceholderLabel)
}
