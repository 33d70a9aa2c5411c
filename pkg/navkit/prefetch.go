package navkit

import "context"

// Prefetch issues a best-effort cache-warming hint for rawURL through
// the host's network probe. Fire-and-forget: every failure is
// swallowed, navigation state is never affected. No-op without a host.
func (n *Navigator) Prefetch(ctx context.Context, rawURL string) {
	if n.host == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	n.host.Probe(ctx, rawURL)
	n.metrics.prefetched()
}
