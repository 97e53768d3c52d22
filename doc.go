// Package mirror keeps an in-memory document store consistent with a
// directory of files.
//
// Every document lives in its own file. Formats that can carry metadata
// (Markdown frontmatter, JSON, YAML) embed it; anything else gets a
// companion "<file>.meta" YAML file. Changes can come from either side:
// writes through the service land on disk atomically, and edits made on
// disk by other programs are picked up by the next Sync.
//
// Sync is poll based. Each pass scans the tree, diffs it against the file
// index by modification time, and reconciles removals, creations and
// modifications into the store. Per-file failures are reported and the pass
// continues.
//
// Usage:
//
//	svc, err := mirror.New("./notes",
//		mirror.WithIgnore("drafts/**"),
//		mirror.WithLogger(logger),
//	)
//
//	err = svc.SaveDocument(ctx, "hello", "content", nil)
//
//	report, err := svc.Sync(ctx)
package mirror
