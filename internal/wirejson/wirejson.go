// Package wirejson keeps unknown JSON object members alive across a
// decode/encode round trip of a typed struct.
package wirejson

import (
	"bytes"
	"encoding/json"
)

// Extra holds object members a typed struct does not declare.
type Extra map[string]json.RawMessage

// Split returns the members of the JSON object in data whose keys are not
// listed in known. A JSON null yields a nil Extra.
func Split(data []byte, known ...string) (Extra, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, key := range known {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return Extra(all), nil
}

// Merge adds the extra members to the encoded JSON object in data. Members
// already present in data win.
func Merge(data []byte, extra Extra) ([]byte, error) {
	if len(extra) == 0 {
		return data, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, ok := all[key]; !ok {
			all[key] = value
		}
	}
	return json.Marshal(all)
}

// Clone returns a copy that can be modified independently.
func (e Extra) Clone() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for k, v := range e {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
