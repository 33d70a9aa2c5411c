// Package navkit implements a client-side navigation controller.
//
// A Navigator keeps an in-memory RouterState (path, query, fragment) in
// sync with a host environment's history stack, performs outbound
// navigations (push, replace, back, forward, refresh), and notifies
// subscribers whenever the location changes — whether the change came
// from the Navigator itself or from the host (user back/forward, manual
// fragment edit).
//
// The host environment is abstracted behind the Host interface. A nil
// host yields a headless Navigator: every host-dependent operation
// degrades to a no-op and the state stays at its initial snapshot.
//
// One Navigator is expected per running application, constructed at
// startup and torn down with Destroy at shutdown. Share it by reference;
// do not construct one per consumer.
package navkit
