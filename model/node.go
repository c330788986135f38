package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusWarning  Status = "warning"
	StatusError    Status = "error"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusWarning, StatusError}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusWarning, StatusError:
		return true
	}
	return false
}

// Label is the operator-facing name of the status.
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Активен"
	case StatusInactive:
		return "Неактивен"
	case StatusWarning:
		return "Предупреждение"
	default:
		return "Ошибка"
	}
}

// Color is the tag color used by the node table.
func (s Status) Color() string {
	switch s {
	case StatusActive:
		return "green"
	case StatusWarning:
		return "orange"
	case StatusError:
		return "red"
	default:
		return "default"
	}
}

// Districts are the federal districts a node can belong to.
var Districts = []string{
	"Центральный",
	"Северо-Западный",
	"Южный",
	"Приволжский",
	"Уральский",
	"Сибирский",
	"Дальневосточный",
	"Северо-Кавказский",
}

func IsDistrict(name string) bool {
	for _, d := range Districts {
		if d == name {
			return true
		}
	}
	return false
}

// Node is a regional user node record. ID is assigned by the remote registry;
// Key is the local row key and never leaves the process.
type Node struct {
	ID                string `json:"id,omitempty"`
	Key               string `json:"-"`
	Region            string `json:"region"`
	District          string `json:"district"`
	NodeName          string `json:"nodeName"`
	TechnicalSolution string `json:"technicalSolution"`
	Status            Status `json:"status"`
	RegionCode        string `json:"regionCode"`
}

// Fields is the writable part of a node, sent on create.
type Fields struct {
	Region            string `json:"region"`
	District          string `json:"district"`
	NodeName          string `json:"nodeName"`
	TechnicalSolution string `json:"technicalSolution"`
	Status            Status `json:"status"`
	RegionCode        string `json:"regionCode"`
}

func (n Node) Fields() Fields {
	return Fields{
		Region:            n.Region,
		District:          n.District,
		NodeName:          n.NodeName,
		TechnicalSolution: n.TechnicalSolution,
		Status:            n.Status,
		RegionCode:        n.RegionCode,
	}
}

// Apply overwrites the writable fields of n, keeping ID and Key.
func (n Node) Apply(f Fields) Node {
	n.Region = f.Region
	n.District = f.District
	n.NodeName = f.NodeName
	n.TechnicalSolution = f.TechnicalSolution
	n.Status = f.Status
	n.RegionCode = f.RegionCode
	return n
}

// UnmarshalJSON accepts the id as either a JSON string or a number.
func (n *Node) UnmarshalJSON(data []byte) error {
	type nodeAlias Node
	aux := struct {
		ID json.RawMessage `json:"id"`
		*nodeAlias
	}{nodeAlias: (*nodeAlias)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	id, err := rawID(aux.ID)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func rawID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", fmt.Errorf("node id: %w", err)
	}
	return num.String(), nil
}

// CompositeKey is the fallback identifier for records the registry returned without one.
func (n Node) CompositeKey() string {
	return n.RegionCode + "-" + n.NodeName
}

// EnsureIdentifier guarantees a non-empty ID and Key. Missing values fall back
// to each other, then to the composite region code/node name key.
func EnsureIdentifier(n Node) Node {
	id, key := n.ID, n.Key
	switch {
	case id != "":
	case key != "":
		id = key
	default:
		id = n.CompositeKey()
	}
	switch {
	case key != "":
	case n.ID != "":
		key = n.ID
	default:
		key = n.CompositeKey()
	}
	n.ID, n.Key = id, key
	return n
}
