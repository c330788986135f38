package engine

import (
	"eaisdo/messaging"
)

func (e *Engine) wireEventHandlers() {
	// Node changes: audit and notify
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(NodeCreatedEvent)
		e.logFn("engine: node %s created in %s by %s", ev.NodeName, ev.District, ev.Actor)
		e.audit("node", "", "created", "", ev.NodeName, ev.Actor)
		e.publish("node.created", ev.Actor, messaging.NodeChange{NodeName: ev.NodeName, District: ev.District})
	}, EventNodeCreated)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(NodeUpdatedEvent)
		e.logFn("engine: node %s (%s) updated by %s", ev.NodeID, ev.NodeName, ev.Actor)
		e.audit("node", ev.NodeID, "updated", "", ev.NodeName, ev.Actor)
		e.publish("node.updated", ev.Actor, messaging.NodeChange{NodeID: ev.NodeID, NodeName: ev.NodeName})
	}, EventNodeUpdated)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(NodeDeletedEvent)
		e.logFn("engine: node %s deleted by %s", ev.NodeID, ev.Actor)
		e.audit("node", ev.NodeID, "deleted", "", "", ev.Actor)
		e.publish("node.deleted", ev.Actor, messaging.NodeChange{NodeID: ev.NodeID})
	}, EventNodeDeleted)

	// Registry failures: audit only, the screen already logged them
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(RegistryErrorEvent)
		e.audit("registry", ev.NodeID, ev.Op+"_failed", "", ev.Err.Error(), ev.Actor)
	}, EventRegistryError)

	// Sessions
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(SessionEvent)
		action := "login"
		switch evt.Type {
		case EventLoginFailed:
			action = "login_failed"
		case EventLogout:
			action = "logout"
		}
		e.logFn("engine: %s %s from %s", ev.Username, action, ev.RemoteAddr)
		e.audit("session", "", action, "", ev.RemoteAddr, ev.Username)
		e.publish("session."+action, ev.Username, messaging.SessionChange{
			Username: ev.Username,
			Success:  evt.Type != EventLoginFailed,
		})
	}, EventLoginSucceeded, EventLoginFailed, EventLogout)

	// Connectivity
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		e.logFn("engine: %s", ev.Detail)
		e.audit("system", "", "connection", "", ev.Detail, "system")
	}, EventRegistryConnected, EventRegistryDisconnected, EventMessagingConnected, EventMessagingDisconnected)
}

func (e *Engine) audit(entityType, entityID, action, oldValue, newValue, actor string) {
	if e.db == nil {
		return
	}
	if err := e.db.AppendAudit(entityType, entityID, action, oldValue, newValue, actor); err != nil {
		e.logFn("engine: audit %s %s: %v", entityType, action, err)
	}
}

func (e *Engine) publish(msgType, actor string, payload any) {
	if e.msgClient == nil {
		return
	}
	data, err := messaging.NewEnvelope(msgType, actor, payload).Encode()
	if err != nil {
		e.logFn("engine: encode %s: %v", msgType, err)
		return
	}
	if err := e.msgClient.Publish(e.MessagingConfig().Topic, data); err != nil {
		e.logFn("engine: publish %s: %v", msgType, err)
	}
}
