// Package bridge connects an embedded preview page to its editor shell.
//
// A Bridge is created per page and initialized with the trusted shell origin.
// While initialized it:
//   - turns pick-mode pointer and key events into hover, select and deselect events
//   - posts every event to the parent frame targeted at the trusted origin only
//   - accepts commands only from that origin and only with the shell source tag
//
// Missing, wildcard or malformed origins leave the bridge inert.
//
//	b := bridge.New(page, bridge.WithLogger(logger.Component("bridge-sdk")))
//	if err := b.Init(bridge.Config{Origin: "https://shell.example"}); err != nil {
//		return err
//	}
//	defer b.Destroy()
package bridge
