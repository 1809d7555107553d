package tflite

import (
	"slices"

	"github.com/poiesic/gallerit/ai"
)

// topPredictions pairs scores with labels and returns the k most confident
// entries scoring at least minConfidence. Ties keep label order.
func topPredictions(scores []float32, labels []string, k int, minConfidence float32) []ai.Prediction {
	preds := make([]ai.Prediction, 0, len(scores))
	for i, s := range scores {
		if i >= len(labels) || s < minConfidence {
			continue
		}
		if labels[i] == "background" {
			continue
		}
		preds = append(preds, ai.Prediction{Label: labels[i], Confidence: s})
	}
	slices.SortStableFunc(preds, func(a, b ai.Prediction) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})
	if len(preds) > k {
		preds = preds[:k]
	}
	return preds
}

// dequantize maps uint8 scores onto [0,1].
func dequantize(raw []uint8) []float32 {
	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = float32(v) / 255
	}
	return out
}
