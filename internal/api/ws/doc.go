// Package ws relays bridge messages between the headless preview page and a
// remote editor shell over a WebSocket.
//
// Text frames from the shell are delivered to the page as message events
// carrying the handshake origin; everything the page posts to its parent is
// written back. The upgrade is refused unless the Origin header equals the
// bridge's trusted origin.
package ws
