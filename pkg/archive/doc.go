// Package archive runs archival work as a sequence of independent
// resources.
//
// A resource pairs a fetch step with a store step:
//
//	r := archive.Define("followers",
//		func(ctx context.Context) ([]json.RawMessage, error) {
//			return paginator.FetchAll(ctx, req)
//		},
//		func(ctx context.Context, records []json.RawMessage) error {
//			_, err := store.WriteJSON("followers.json", records)
//			return err
//		})
//	writer.ArchiveResource(ctx, r)
//
// Whatever goes wrong inside a resource, including a panic, is recorded
// on the Writer's Report as FETCH_FAILED or STORE_FAILED and the run
// moves on. The Report's Status is PARTIAL_SUCCESS when anything failed.
package archive
