/*
Package operation implements the batch rewrite pipeline.

	+-------------+
	|  Operation  |
	| (Core Loop) |
	+------+------+
	       |
	+------+------+
	|   Rewrite   |
	| (Per File)  |
	+------+------+

🎯 Purpose:
- Orchestrates the per-file rewrite: read, prompt, complete, write
- Isolates failures so one file never aborts another
- Supplements the loop with validation retries and restore-on-failure

🔄 Flow:
1. Resolves the target file set from the configured glob pattern
2. For each file: build prompt, request completion, extract, write
3. Optionally validates each write with a shell command, retrying up to
   the configured budget and restoring the original on final failure
4. Records every outcome and reports the summary

🤝 Interfaces:
- provider.Completer: the completion service client
- status.Manager: file I/O and outcome tracking
- config.Config: operation parameters

📝 Design Philosophy:
The operation package is the heart of refactory, but it stays focused
on orchestration: file I/O lives in the status package, transport in
the provider packages, and message construction in prompt. Each file's
state machine is independent; the only values shared across iterations
are the read-only instruction, the model name, and the mutex-guarded
outcome log. That is what makes the bounded worker pool safe.

Running the same batch twice is not idempotent: the model may return
different output for identical input, so repeated runs are expected to
produce different rewrites. Treat that as a property of the endpoint,
not a bug in the loop.

🔍 Example:

	op, err := operation.New(operation.Options{
		Config:      cfg,
		Instruction: inst,
		Completer:   completer,
		StatusMgr:   status.New("."),
		Logger:      logger,
	})
	err = op.Execute(ctx)
*/
package operation
