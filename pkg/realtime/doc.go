// ABOUTME: Azure OpenAI Realtime wire protocol package
// ABOUTME: Defines client/server event types and the WebSocket connection
// Package realtime implements the client side of the Azure OpenAI Realtime
// protocol.
//
// Outgoing messages are typed structs implementing ClientEvent. Incoming
// messages decode into a closed set of Event types; anything unrecognised
// becomes Unknown so callers never have to match on raw type strings.
//
// Example:
//
//	url, err := realtime.BuildURL(endpoint, "2025-04-01-preview", "gpt-4o-realtime")
//	client, err := realtime.Dial(ctx, realtime.Config{URL: url, APIKey: key})
//	err = client.Send(ctx, realtime.NewSessionUpdate(session))
//	event, err := client.Receive(ctx)
package realtime
