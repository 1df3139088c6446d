// Package checkpoint buffers result rows and periodically writes them to a
// Store so an interrupted run can resume.
//
// The resume point is the highest tweet_num already in the store, read once
// at startup. A fresh run writes the header row first; a resumed run never
// writes it again. Rows are flushed every N completed batches and once more
// when the run ends, so at most N batches of work are lost on a crash.
//
//	store := checkpoint.NewCSVStore("output.csv", log)
//	offset, resume, err := store.Offset(ctx)
//	cp := checkpoint.New(store, checkpoint.MediaHeader, resume, 10, log)
//	cp.Add(row)
//	cp.BatchDone(ctx)
//	cp.Close(ctx)
package checkpoint
