package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Normalize maps any operation outcome onto a canonical envelope.
//
// Priority order:
//  1. a tagged *Failure (returned or wrapped in err): its fields are copied
//     verbatim, extra fields merged alongside status/message;
//  2. any other non-nil err: status=error with the error text as message;
//  3. the returned value: status=success with the value flattened as data.
func Normalize(value any, err error) Envelope {
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			return fromFailure(f)
		}
		return Error(KindUnknownEngineError, err.Error())
	}

	if f, ok := value.(*Failure); ok && f != nil {
		return fromFailure(f)
	}

	// Bridge calls already produce a canonical envelope; pass it through.
	if env, ok := value.(Envelope); ok {
		return env
	}

	data, derr := flatten(value)
	if derr != nil {
		return Error(KindUnknownEngineError, derr.Error())
	}

	env := Envelope{Status: StatusSuccess, Data: data}
	// An operation may set its own message by returning a "message" data key.
	if msg, ok := data["message"].(string); ok {
		env.Message = msg
		delete(data, "message")
	}
	return env
}

func fromFailure(f *Failure) Envelope {
	env := Error(f.Kind, f.Message)
	for k, v := range f.Extra {
		if reservedKeys[k] {
			continue
		}
		env.Data[k] = v
	}
	return env
}

// flatten converts an operation's domain value to a data map. nil stays
// empty, maps pass through, anything else round-trips through JSON so typed
// result structs keep their declared field names.
func flatten(value any) (map[string]any, error) {
	switch v := value.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal operation result: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("operation result is not an object: %w", err)
	}
	return m, nil
}
