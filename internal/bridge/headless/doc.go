/*
Package headless is an in-process browsing context for the bridge.

A Page is parsed from HTML (file, URL or string), keeps the document as an
x/net/html tree queried through cascadia, and implements dom.Window and
dom.Document. It stands in for the browser in tests and in the preview daemon.

# Event loop

Every dispatch helper (MouseMove, Click, KeyDown, ReceiveMessage, RaiseError)
and every SetTimeout callback takes the page turn lock, so a handler runs to
completion before the next event is looked at. Inspection helpers (Find,
ElementMap, Do) take the same lock; they must not be called from inside a
handler.

# Geometry

There is no layout engine. Bounding rectangles come from a YAML Layout keyed by
the identity attribute, or from SetRect; everything else has a zero rect.

# Parent frame

Frame records what the page posts to its parent and honors the target origin
the same way window.postMessage does.
*/
package headless
