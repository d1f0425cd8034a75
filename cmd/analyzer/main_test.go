package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"virusscope/internal/scorer"
)

func TestWriteModesFixedOrder(t *testing.T) {
	modes := map[scorer.PresentationMode]int{
		scorer.NoPrediction:   1,
		scorer.TopPrediction:  4,
		scorer.AboveThreshold: 12,
	}
	want := "  above_threshold  12\n  top_prediction   4\n  none             1\n"
	for i := 0; i < 5; i++ {
		var buf bytes.Buffer
		writeModes(&buf, modes)
		assert.Equal(t, want, buf.String())
	}

	var buf bytes.Buffer
	writeModes(&buf, map[scorer.PresentationMode]int{scorer.TopPrediction: 2})
	assert.Equal(t, "  above_threshold  0\n  top_prediction   2\n  none             0\n", buf.String())
}
