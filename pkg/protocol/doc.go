// Package protocol defines the binary wire format between a navigation
// controller and its browser thin client.
//
// Server → client traffic carries navigation commands (push, replace,
// back, forward, scroll-to-top). Client → server traffic carries
// location messages: the initial report, history traversals, and
// fragment changes. Every message travels inside a Frame with a fixed
// 4-byte header; payloads use varint length prefixes for strings.
//
// Decoding enforces allocation limits so a malicious peer cannot force
// large allocations with a small message.
package protocol
