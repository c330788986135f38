package engine

// screenEmitter bridges the nodes package's emitter interface to the EventBus.
type screenEmitter struct {
	bus   *EventBus
	actor string
}

func (e *screenEmitter) EmitNodeCreated(nodeName, district string) {
	e.bus.Emit(Event{Type: EventNodeCreated, Payload: NodeCreatedEvent{
		NodeName: nodeName,
		District: district,
		Actor:    e.actor,
	}})
}

func (e *screenEmitter) EmitNodeUpdated(id, nodeName string) {
	e.bus.Emit(Event{Type: EventNodeUpdated, Payload: NodeUpdatedEvent{
		NodeID:   id,
		NodeName: nodeName,
		Actor:    e.actor,
	}})
}

func (e *screenEmitter) EmitNodeDeleted(id string) {
	e.bus.Emit(Event{Type: EventNodeDeleted, Payload: NodeDeletedEvent{
		NodeID: id,
		Actor:  e.actor,
	}})
}

func (e *screenEmitter) EmitRegistryError(op, id string, err error) {
	e.bus.Emit(Event{Type: EventRegistryError, Payload: RegistryErrorEvent{
		Op:     op,
		NodeID: id,
		Err:    err,
		Actor:  e.actor,
	}})
}

// EmitLogin records a login attempt from the web layer.
func (e *Engine) EmitLogin(username, remoteAddr string, ok bool) {
	t := EventLoginFailed
	if ok {
		t = EventLoginSucceeded
	}
	e.Events.Emit(Event{Type: t, Payload: SessionEvent{Username: username, RemoteAddr: remoteAddr}})
}

func (e *Engine) EmitLogout(username, remoteAddr string) {
	e.Events.Emit(Event{Type: EventLogout, Payload: SessionEvent{Username: username, RemoteAddr: remoteAddr}})
}
