// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package crucible

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Serializable is implemented by values that need custom, tagged
// serialization support beyond the primitives/maps/slices this package
// already knows how to tag.
type Serializable interface {
	SerializeValue() (interface{}, error)
}

// Deserializer rehydrates a tagged value previously produced by
// SerializeValue. Hosts register one per custom type name in a class
// registry passed to Deserialize.
type Deserializer func(data interface{}) (interface{}, error)

// taggedValue is the {"type": ..., "value": ...} envelope every
// serialized value is wrapped in, mirroring the Python original's
// serialize()/deserialize() tagged-union protocol.
type taggedValue struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// tagValue wraps v in its type tag, recursing into maps and slices.
func tagValue(v interface{}) (taggedValue, error) {
	switch x := v.(type) {
	case nil:
		return taggedValue{Type: "nil"}, nil
	case Serializable:
		inner, err := x.SerializeValue()
		if err != nil {
			return taggedValue{}, err
		}
		return taggedValue{Type: fmt.Sprintf("%T", x), Value: inner}, nil
	case map[string]interface{}:
		out := map[string]interface{}{}
		for k, e := range x {
			t, err := tagValue(e)
			if err != nil {
				return taggedValue{}, err
			}
			out[k] = t
		}
		return taggedValue{Type: "map", Value: out}, nil
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			t, err := tagValue(e)
			if err != nil {
				return taggedValue{}, err
			}
			out[i] = t
		}
		return taggedValue{Type: "list", Value: out}, nil
	case int, float64, string, bool:
		return taggedValue{Type: fmt.Sprintf("%T", x), Value: x}, nil
	default:
		return taggedValue{}, fmt.Errorf("crucible: cannot serialize value of type %T", v)
	}
}

// untagValue reverses tagValue, consulting classes for any type name it
// does not recognize natively.
func untagValue(t taggedValue, classes map[string]Deserializer) (interface{}, error) {
	switch t.Type {
	case "nil":
		return nil, nil
	case "map":
		raw, ok := t.Value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("crucible: malformed map payload")
		}
		out := map[string]interface{}{}
		for k, v := range raw {
			inner, err := retag(v)
			if err != nil {
				return nil, err
			}
			decoded, err := untagValue(inner, classes)
			if err != nil {
				return nil, err
			}
			out[k] = decoded
		}
		return out, nil
	case "list":
		raw, ok := t.Value.([]interface{})
		if !ok {
			return nil, fmt.Errorf("crucible: malformed list payload")
		}
		out := make([]interface{}, len(raw))
		for i, v := range raw {
			inner, err := retag(v)
			if err != nil {
				return nil, err
			}
			decoded, err := untagValue(inner, classes)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	case "int", "float64", "string", "bool":
		return t.Value, nil
	default:
		if classes == nil {
			return nil, &DeserializationError{Type: t.Type}
		}
		fn, ok := classes[t.Type]
		if !ok {
			return nil, &DeserializationError{Type: t.Type}
		}
		return fn(t.Value)
	}
}

// retag normalizes a freshly json/yaml-unmarshaled map into a taggedValue.
func retag(v interface{}) (taggedValue, error) {
	if already, ok := v.(taggedValue); ok {
		return already, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return taggedValue{}, fmt.Errorf("crucible: expected tagged value, got %T", v)
	}
	typ, _ := m["type"].(string)
	return taggedValue{Type: typ, Value: m["value"]}, nil
}

// DeserializationError reports an unknown type tag encountered while
// rehydrating serialized data.
type DeserializationError struct{ Type string }

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("crucible: unknown type %q in serialized data", e.Type)
}

// snapshot is the on-disk shape of a whole Crucible.
type snapshot struct {
	Access    Access      `json:"access"`
	Variables taggedValue `json:"variables"`
}

// MarshalJSON serializes the crucible's access flags and variable tree
// into the tagged-union shape the Python original's serialize() used.
func (c *Crucible) MarshalJSON() ([]byte, error) {
	tagged, err := tagValue(c.Variables)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snapshot{Access: c.Access, Variables: tagged})
}

// Deserialize rehydrates a Crucible previously produced by MarshalJSON,
// consulting classes to rehydrate any custom Serializable types.
func Deserialize(data []byte, classes map[string]Deserializer) (*Crucible, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	vars, err := untagValue(snap.Variables, classes)
	if err != nil {
		return nil, err
	}
	m, ok := vars.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("crucible: top-level variables must be a map")
	}
	return &Crucible{Variables: m, Access: snap.Access}, nil
}

// MarshalYAML mirrors MarshalJSON for hosts that prefer YAML snapshots.
func (c *Crucible) MarshalYAML() (interface{}, error) {
	tagged, err := tagValue(c.Variables)
	if err != nil {
		return nil, err
	}
	return snapshot{Access: c.Access, Variables: tagged}, nil
}

// DeserializeYAML mirrors Deserialize for YAML-encoded snapshots.
func DeserializeYAML(data []byte, classes map[string]Deserializer) (*Crucible, error) {
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	vars, err := untagValue(snap.Variables, classes)
	if err != nil {
		return nil, err
	}
	m, ok := vars.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("crucible: top-level variables must be a map")
	}
	return &Crucible{Variables: m, Access: snap.Access}, nil
}
