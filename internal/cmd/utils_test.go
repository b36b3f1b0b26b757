package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty", "", "No key"},
		{"too short to mask safely", "shortkey", "No key"},
		{"typical key", "sk_live_abcdef123456", "sk_live_...3456"},
		{"exactly twelve chars", "abcdefgh1234", "abcdefgh...1234"},
		{"uuid style", "3868a328-8043-4528-ab51-53f1464dd6ee", "3868a328...d6ee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskKey(tt.key))
		})
	}
}
