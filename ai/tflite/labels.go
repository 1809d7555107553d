package tflite

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoLabels is returned when a label file contains no labels.
var ErrNoLabels = errors.New("label file contains no labels")

// LoadLabels reads one label per line. Blank lines are skipped and
// surrounding whitespace is trimmed. A line may hold several synonyms
// separated by ", ", which is kept intact.
func LoadLabels(r io.Reader) ([]string, error) {
	var labels []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	return labels, nil
}

func loadLabelsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadLabels(f)
}

// alignLabels reconciles the label list with the model's output width.
// MobileNet exports from the TF-slim zoo emit 1001 scores with a leading
// background class that many label files omit.
func alignLabels(labels []string, outputs int) ([]string, error) {
	switch {
	case len(labels) == outputs:
		return labels, nil
	case len(labels) == outputs-1:
		return append([]string{"background"}, labels...), nil
	default:
		return nil, fmt.Errorf("model has %d outputs but label file has %d labels", outputs, len(labels))
	}
}
