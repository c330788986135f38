package nodes

// Emitter is the interface adapters must satisfy to bridge screen events to the engine.
type Emitter interface {
	EmitNodeCreated(nodeName, district string)
	EmitNodeUpdated(id, nodeName string)
	EmitNodeDeleted(id string)
	EmitRegistryError(op, id string, err error)
}

type noopEmitter struct{}

func (noopEmitter) EmitNodeCreated(string, string)          {}
func (noopEmitter) EmitNodeUpdated(string, string)          {}
func (noopEmitter) EmitNodeDeleted(string)                  {}
func (noopEmitter) EmitRegistryError(string, string, error) {}
