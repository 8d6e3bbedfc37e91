// Package panel holds the device control panel independent of any UI.
//
// A Session runs the load flow: read the API key, fetch the registry, render
// one ControlBlock per light or socket, bind a Dispatcher to every control
// and start a Poller. Front-ends (the terminal UI, the websocket feed) read
// blocks and records, subscribe to the Store for events, and feed user edits
// back through Toggle.Change and ColorInput.Change.
//
// State flows one way per source:
//
//	poll     -> Store.ApplyPoll   -> Toggle.Set / ColorInput.Set (no listeners)
//	user     -> Toggle.Change     -> Dispatcher -> Store.ApplyEdit -> relay
//
// A user edit is shown at once and marked Pending. If the relay rejects the
// command the edit stays until the next successful poll replaces it.
package panel
