package navkit

// Event bridge: host-originated notifications fold into state refreshes
// here. Traversal and fragment-change notifications are deliberately
// asymmetric — an outbound push/replace coincides with a traversal
// notification on most hosts but never raises a fragment-change
// notification on its own, so only the former is checked against the
// programmatic guard. Suppressing it prevents a double notification to
// subscribers for one logical navigation.

// handleTraversal processes a history traversal notification
// (back/forward). Ignored entirely while the programmatic guard is
// armed: such a notification originates from this Navigator's own
// pending outbound call, not genuine external traversal.
func (n *Navigator) handleTraversal() {
	n.mu.Lock()
	if n.navigating {
		n.mu.Unlock()
		n.metrics.traversalSuppressed()
		return
	}
	n.state = StateFromURL(n.host.CurrentURL())
	n.mu.Unlock()

	n.notify()
}

// handleHashChange processes a fragment-change notification. Never
// suppressed, regardless of guard state.
func (n *Navigator) handleHashChange() {
	n.mu.Lock()
	n.state = StateFromURL(n.host.CurrentURL())
	n.mu.Unlock()

	n.notify()
}
