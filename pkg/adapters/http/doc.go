/*
Package http exposes the engine as a JSON channel over HTTP.

	POST   /conversations                 start a conversation (optional intent)
	POST   /conversations/{id}/turns      send {"text": "..."} and get the activities
	POST   /conversations/{id}/reset      cancel the active dialogs
	GET    /conversations/{id}            stored state, with PII slots masked
	GET    /conversations/{id}/events     server-sent state diffs
	DELETE /conversations/{id}            forget the conversation
	GET    /health
	GET    /metrics                       when a metrics handler is configured

Turns are committed before the response is written, so a client that sees an
activity can rely on the conversation having moved on.
*/
package http
