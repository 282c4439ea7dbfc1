package constant

const (
	// Websocket push event names consumed by the client.
	PushEventTenantStatus = "tenant_status"
	PushEventTypingChunk  = "typing_chunk"
	PushEventChatMessage  = "chat_message"
	PushEventNotice       = "notice"

	// Prompt used by the message improvement endpoint.
	ImproveMessagePrompt = `Rewrite the following chat message so it is clearer and better phrased, keeping the original meaning and tone. Reply with the rewritten message only, no commentary.

Message: %s`
)
