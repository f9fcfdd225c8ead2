// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-crawler/pkg/slug"
)

/*
TestFrom covers accent folding, punctuation and fallback behaviour.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Yotsuba to!", "yotsuba-to"},
		{"accents", "Pokémon Adventures", "pokemon-adventures"},
		{"symbols", "  Kaguya-sama: Love is War  ", "kaguya-sama-love-is-war"},
		{"cjk_only", "よつばと", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}

	assert.Equal(t, "m-1", slug.FromOr("よつばと", "m-1"))
}
