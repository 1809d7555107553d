// Package gallery holds the in-memory collection of enriched images.
//
// The Store is the only state shared between concurrently running
// enrichment batches. It publishes immutable snapshots, so readers such as
// the search facade always see a consistent list without taking locks.
//
//	store := gallery.NewStore()
//	if err := store.Append(record); err != nil {
//	    return err
//	}
//	for _, r := range store.List() {
//	    fmt.Println(r.Title, r.Classifications)
//	}
package gallery
