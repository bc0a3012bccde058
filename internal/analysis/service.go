package analysis

import "context"

// StartPoll registers the job as the owner's active poll and launches its
// loop in the background. Any previous poll for the owner is superseded. The
// loop is detached from the submitting request and stops through the
// registry's cancel func.
func StartPoll(registry *Registry, owner string, client *Client, job Job) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := registry.Begin(owner, job, cancel)
	go func() {
		defer cancel()
		client.Poll(ctx, job, func(snapshot Job) {
			registry.Apply(owner, gen, snapshot)
		})
	}()
}
