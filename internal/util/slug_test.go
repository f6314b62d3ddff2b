package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "The Midnight Vault", "the-midnight-vault"},
		{"underscores", "midnight_vault", "midnight-vault"},
		{"already slug", "midnight-vault", "midnight-vault"},
		{"uppercase", "MIDNIGHT-VAULT", "midnight-vault"},
		{"emoji and punctuation", "🔒 Locked Room!", "locked-room"},
		{"extra whitespace", "  multi   word ", "multi-word"},
		{"leading and trailing dashes", "--leading--", "leading"},
		{"slashes", "cellar/attic", "cellar-attic"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}
