// Package relay is an HTTP client for the Govee cloud relay.
//
// The relay brokers every interaction with physical devices; nothing here
// talks to a device on the LAN. All calls are GET requests under a base URL
// such as https://<relay-host>/api/govee:
//
//	GET /devices                      registry: [{device, deviceName, sku, type}]
//	GET /{id}/state                   state: {MACAddress, On, Color}
//	GET /{mac}/power/{on|off}         command, body ignored
//	GET /{mac}/color/{r}/{g}/{b}      command, body ignored
//
// Each request carries the API key in the x-functions-key header. The key is
// fetched from a KeySource right before the request is built, so a key edited
// mid-session applies to the next call.
//
// # Usage Example
//
//	client := relay.NewClient(cfg.BaseURL, credential.NewAdapter(store))
//	devices, err := client.ListDevices(ctx)
//	if err != nil {
//	    fmt.Println(relay.ShortMessage(err))
//	}
//
// # Error Handling
//
// Every failure is a *RelayError whose Type separates network problems,
// rejected keys, HTTP failures and unparseable bodies. A 401/403 sent while
// the key is empty is reported as ErrTypeMissingCredential. Use the Is*
// helpers, ShortMessage and TroubleshootingHint rather than matching strings.
//
// # Thread Safety
//
// Client instances are safe for concurrent use once configured.
package relay
