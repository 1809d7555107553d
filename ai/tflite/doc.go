// Package tflite provides an in-process image classifier running a
// MobileNet-style TensorFlow Lite model.
//
// The provider reads a .tflite model and a newline-separated label file
// (ImageNet style, where a line may list synonyms such as "tabby, tabby cat").
// Images are resized to the model's input tensor, normalized to [-1,1] for
// float models or passed as raw bytes for quantized models, and the softmax
// output is ranked into the top K predictions.
//
// Linking requires the TensorFlow Lite C library.
package tflite
