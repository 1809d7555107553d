// Package ingestion turns freshly captured images into labeled gallery records.
//
// The Pipeline type manages the enrichment workflow for a batch of images:
//   - Acquiring the shared classifier (loaded once, on first use)
//   - Decoding each image's pixel data
//   - Classifying it and splitting labels into search tokens
//   - Appending the finished record to the gallery store
//
// Images of one batch are processed sequentially and in order. Separate
// batches may run concurrently on a worker pool via Submit. A failing image is
// skipped and reported; it never blocks the rest of its batch.
package ingestion
