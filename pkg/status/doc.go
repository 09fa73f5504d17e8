/*
Package status manages file storage and outcome tracking for refactory.

	            +-------------+
	            |   Status    |
	            | (Storage +  |
	            |  Outcomes)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Files   |           | Results |
	| (Storage) |           | (Batch) |
	+-----------+           +---------+

🎯 Purpose:
- Reads target files and writes model output back atomically
- Keeps a backup of the original while validation is pending
- Records one Result per processed file
- Aggregates the batch Summary (succeeded/failed, failure causes)

🤝 Interfaces:
- FileManager: file operations consumed by the rewrite loop
- Tracker: outcome recording and summary

📝 Design Philosophy:
Everything the batch persists goes through this package; there is no
journal or lock file, so the rewritten files themselves are the only
durable state. Outcome recording is mutex-guarded because the rewrite
loop may run files through a worker pool.

🔍 Example:

	mgr := status.New(".")

	content, err := mgr.ReadFile(ctx, path)
	err = mgr.WriteFileAtomic(ctx, path, rewritten)

	mgr.Track(ctx, status.Result{Path: path, Outcome: status.OutcomeRewritten})
	summary := mgr.Summary(ctx)
*/
package status
