package clientdist

import _ "embed"

// NavkitJS is the browser thin client. It mirrors history over the
// bridge WebSocket and applies navigation commands from the server.
//
// Serve it at any path and load it with:
//
//	<script src="/navkit.js" data-navkit-ws="wss://host/_navkit/ws"></script>
//
//go:embed navkit.js
var NavkitJS []byte
