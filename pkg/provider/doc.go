/*
Package provider defines the interface for completion services in refactory.

	            +-------------+
	            |  Completer  |
	            | (Endpoint)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|  OpenAI   |           |  Test   |
	| Completer |           |  Fakes  |
	+-----------+           +---------+

🎯 Purpose:
- Abstracts the model completion endpoint behind one capability
- Keeps the network transport out of the rewrite loop
- Classifies failures into a small sentinel taxonomy

🔄 Flow:
1. The CLI picks a registered factory by name
2. The factory authenticates from the environment and returns a Completer
3. The rewrite loop calls Complete once per attempt
4. Errors come back wrapped around one of the sentinels

📝 Design Philosophy:
The rewrite loop must be testable without the network, so it depends
only on the Completer interface. Retry policy deliberately does not
live here: a completion error is a per-file verdict, and the batch
decides what to do with it.

🔍 Example:

	factory, err := provider.Get("openai")
	completer, err := factory(ctx)

	text, err := completer.Complete(ctx, provider.Request{
		Model:    "gpt-4",
		Messages: messages,
	})
	if errors.Is(err, provider.ErrRateLimited) {
		// report and move on to the next file
	}
*/
package provider
