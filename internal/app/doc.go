// Package app is the composition root of the Blogen client.
//
// Run loads configuration (.env files, config.toml, BLOGEN_* overrides),
// builds the logger and tracer, opens the token store, and wires the API
// client, session manager, actions layer and UI together. A saved session is
// restored before the UI starts.
//
//	Run()
//	  ├─> config.Load()         config.toml + environment
//	  ├─> logging.New()         zap to a file
//	  ├─> telemetry.Init()      optional Jaeger tracing
//	  ├─> tokenstore.Open()     file, redis or none
//	  ├─> blogen.NewClient()    REST client, token from the session
//	  ├─> actions.New()         confirm-then-apply over state.Store
//	  ├─> Manager.Restore()     reuse a saved token
//	  ├─> StartRefresher()      background page reloads
//	  └─> ui.Run()              blocks until quit
//
// # Refreshing
//
// StartRefresher reloads the current page at refresh_interval while a user
// is signed in. Failures are recorded on the store, which marks the UI
// offline, and the next attempt backs off exponentially up to 30 seconds.
// A zero interval disables background refreshes.
//
// # Errors
//
// Configuration, logging and token store failures are fatal. Tracing setup
// and session restore failures are logged and the client continues.
package app
