// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Classifier and ai.Provider
// for use in unit tests. The mocks allow tests to run without model files or
// a vision service, and make classification deterministic.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	handle, err := ai.NewHandle(provider)
//
//	// Custom behavior injection
//	classifier := mock.NewMockClassifier()
//	classifier.ClassifyFunc = func(ctx context.Context, img image.Image) ([]ai.Prediction, error) {
//	    return []ai.Prediction{{Label: "cat", Confidence: 0.9}}, nil
//	}
//
//	// Check call counts
//	loads := provider.LoadCount()
//
// # Default Behavior
//
//   - MockClassifier: Picks labels from Vocabulary based on a hash of the pixels
//   - MockProvider: Returns one shared MockClassifier from every load
package mock
