package navkit

// transitionStrategy controls how the mutate-refresh-notify sequence of
// a navigation executes. The variant is selected once at construction
// from a capability probe on the host, not branched at every call site.
type transitionStrategy interface {
	// run executes fn exactly once.
	run(fn func())

	// wrapped reports whether fn runs inside a visual transition.
	wrapped() bool
}

// selectTransition probes host for the optional visual-transition
// capability and picks the matching strategy.
func selectTransition(host Host) transitionStrategy {
	if th, ok := host.(TransitionHost); ok {
		return wrappedTransition{host: th}
	}
	return directTransition{}
}

// directTransition runs the navigation sequence inline.
type directTransition struct{}

func (directTransition) run(fn func()) { fn() }
func (directTransition) wrapped() bool { return false }

// wrappedTransition batches the navigation sequence into the host's
// visual transition. The host guarantees the callback is invoked to
// completion exactly once.
type wrappedTransition struct {
	host TransitionHost
}

func (t wrappedTransition) run(fn func()) { t.host.StartTransition(fn) }
func (t wrappedTransition) wrapped() bool { return true }
