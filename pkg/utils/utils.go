// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GetMapValueAs get and cast to a type
func GetMapValueAs[T any](m map[string]interface{}, key string) (t T, ok bool) {
	var v interface{}
	if m == nil {
		return t, false
	}
	if v, ok = m[key]; !ok {
		return t, false
	}
	switch val := v.(type) {
	case T:
		return val, true
	default:
		return t, false
	}
}

// GetMapInt reads a numeric option. JSON decoding yields float64, callers
// inside the process may pass int.
func GetMapInt(m map[string]interface{}, key string) (int, bool) {
	if v, ok := GetMapValueAs[float64](m, key); ok {
		return int(v), true
	}
	if v, ok := GetMapValueAs[int](m, key); ok {
		return v, true
	}
	return 0, false
}

// ContainsFold return true if any of values is in list, ignoring case.
func ContainsFold(list []string, values ...string) bool {
	for _, v := range values {
		for _, item := range list {
			if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(v)) {
				return true
			}
		}
	}
	return false
}

// GenerateUUID generates uuid without hyphens.
func GenerateUUID() string {
	id, _ := uuid.NewRandom()
	return strings.ReplaceAll(id.String(), "-", "")
}

// NewMatchID returns a lexically sortable identifier for a ranked match.
func NewMatchID() string {
	return strings.ToLower(ulid.Make().String())
}

// Ordinal formats 1 as "1st", 2 as "2nd", 11 as "11th".
func Ordinal(i int) string {
	switch i % 100 {
	case 11, 12, 13:
		return fmt.Sprintf("%dth", i)
	}
	switch i % 10 {
	case 1:
		return fmt.Sprintf("%dst", i)
	case 2:
		return fmt.Sprintf("%dnd", i)
	case 3:
		return fmt.Sprintf("%drd", i)
	default:
		return fmt.Sprintf("%dth", i)
	}
}
