// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package mapUtil converts between Go structs and map[string]interface{} via
// a JSON marshal/unmarshal round-trip, honoring json struct tags.
package mapUtil

import (
	"encoding/json"
	"fmt"
)

// ConvertInterfaceToExt converts v (a struct or a map) into a
// map[string]interface{} by round-tripping it through JSON.
func ConvertInterfaceToExt(v interface{}) (map[string]interface{}, error) {
	return EncodeMap(v)
}

// EncodeMap round-trips v through JSON into a map[string]interface{}.
func EncodeMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{})
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeFromMap round-trips m through JSON into target, which must be a
// pointer.
func DecodeFromMap(m interface{}, target interface{}) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// DecodeKeyFromMap decodes m[key] into target. Returns an error if key is
// absent.
func DecodeKeyFromMap(m map[string]interface{}, key string, target interface{}) error {
	v, ok := m[key]
	if !ok {
		return fmt.Errorf("key not exist: %s", key)
	}
	return DecodeFromMap(v, target)
}

// DecodeKeyFromMapIfExists decodes m[key] into target if key is present,
// otherwise leaves target untouched and returns nil.
func DecodeKeyFromMapIfExists(m map[string]interface{}, key string, target interface{}) error {
	if _, ok := m[key]; !ok {
		return nil
	}
	return DecodeKeyFromMap(m, key, target)
}

// ConvertToStringMap stringifies every value in m via fmt.Sprintf("%v").
func ConvertToStringMap(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

// ConvertToInterfaceMap widens a map[string]string into a
// map[string]interface{}.
func ConvertToInterfaceMap(m map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ParseJSONMap parses a JSON object string into a map[string]string. An
// empty input string returns (nil, nil) rather than an error.
func ParseJSONMap(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	out := make(map[string]string)
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
