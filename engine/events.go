package engine

const (
	EventNodeCreated EventType = iota + 1
	EventNodeUpdated
	EventNodeDeleted
	EventRegistryError
	EventLoginSucceeded
	EventLoginFailed
	EventLogout
	EventRegistryConnected
	EventRegistryDisconnected
	EventMessagingConnected
	EventMessagingDisconnected
)

// --- Event payloads ---

type NodeCreatedEvent struct {
	NodeName string
	District string
	Actor    string
}

type NodeUpdatedEvent struct {
	NodeID   string
	NodeName string
	Actor    string
}

type NodeDeletedEvent struct {
	NodeID string
	Actor  string
}

type RegistryErrorEvent struct {
	Op     string // "list", "create", "update", "delete"
	NodeID string
	Err    error
	Actor  string
}

type SessionEvent struct {
	Username   string
	RemoteAddr string
}

type ConnectionEvent struct {
	Detail string
}
