// Package envelope defines the uniform result shape every gateway operation
// returns, the error taxonomy, and the normalizer that maps heterogeneous
// engine outcomes onto that shape.
package envelope

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Status values carried on the wire.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the canonical operation result. On the wire it is flattened:
//
//	{"status": "...", "message": "...", <data keys...>, "stdout": "...", "stderr": "..."}
//
// Data keys must not collide with the reserved keys; reserved keys win.
type Envelope struct {
	Status  string
	Message string
	Data    map[string]any
	Stdout  string
	Stderr  string
}

// reservedKeys are envelope-owned top-level JSON keys.
var reservedKeys = map[string]bool{
	"status":  true,
	"message": true,
	"stdout":  true,
	"stderr":  true,
}

// OK returns true when the envelope carries a success status.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// MarshalJSON flattens Data alongside the fixed keys.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Data)+4)
	for k, v := range e.Data {
		if reservedKeys[k] {
			continue
		}
		out[k] = v
	}
	out["status"] = e.Status
	out["message"] = e.Message
	out["stdout"] = e.Stdout
	out["stderr"] = e.Stderr
	return json.Marshal(out)
}

// UnmarshalJSON reverses the flattening.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	e.Status, _ = raw["status"].(string)
	e.Message, _ = raw["message"].(string)
	e.Stdout, _ = raw["stdout"].(string)
	e.Stderr, _ = raw["stderr"].(string)

	e.Data = nil
	for k, v := range raw {
		if reservedKeys[k] {
			continue
		}
		if e.Data == nil {
			e.Data = make(map[string]any)
		}
		e.Data[k] = v
	}
	return nil
}

// Validate checks the envelope invariants: status is one of the two known
// values, and an error status carries a non-empty message.
func (e Envelope) Validate() error {
	switch e.Status {
	case StatusSuccess:
		return nil
	case StatusError:
		if e.Message == "" {
			return fmt.Errorf("envelope has status=error but no message")
		}
		return nil
	case "":
		return fmt.Errorf("envelope missing required field: status")
	default:
		return fmt.Errorf("invalid status value: %q", e.Status)
	}
}

// Payload returns the flattened wire form as a generic map, for transports
// that carry structured content rather than raw JSON.
func (e Envelope) Payload() map[string]any {
	out := make(map[string]any, len(e.Data)+4)
	for k, v := range e.Data {
		if reservedKeys[k] {
			continue
		}
		out[k] = v
	}
	out["status"] = e.Status
	out["message"] = e.Message
	out["stdout"] = e.Stdout
	out["stderr"] = e.Stderr
	return out
}

// DataKeys returns the sorted data key names, useful in logs and tests.
func (e Envelope) DataKeys() []string {
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Success builds a success envelope carrying data.
func Success(message string, data map[string]any) Envelope {
	return Envelope{Status: StatusSuccess, Message: message, Data: data}
}

// Error builds an error envelope with the given kind attached as data.
func Error(kind Kind, message string) Envelope {
	return Envelope{
		Status:  StatusError,
		Message: message,
		Data:    map[string]any{"error_kind": string(kind)},
	}
}

// ErrorKind extracts the error kind recorded in the envelope, if any.
func (e Envelope) ErrorKind() Kind {
	k, _ := e.Data["error_kind"].(string)
	return Kind(k)
}
