// Package feed serves a panel session to browser clients.
//
// A browser extension or page connects to /ws and receives a snapshot of
// every control block, followed by one message per panel event. Clients
// edit controls by sending actions:
//
//	{"action":"power","device":"A","on":true}
//	{"action":"color","device":"A","hex":"#00ff00"}
//	{"action":"poll","device":"A"}
//
// Each action is answered with an "ack" or "error" reply. The resulting
// state changes arrive as ordinary events, so every connected client sees
// the same panel. GET /devices returns the snapshot as plain JSON.
package feed
