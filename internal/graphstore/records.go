package graphstore

import "time"

// Record coercion helpers. Neo4j returns interface{} values whose concrete
// types depend on the Cypher expression; these keep call sites short.

// AsString returns the string value for key, or def when absent or mistyped.
func AsString(m map[string]any, key, def string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return def
}

// AsInt64 returns the integer value for key. Cypher counts arrive as int64.
func AsInt64(m map[string]any, key string, def int64) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return def
}

// AsFloat64 returns the float value for key, accepting integer counts too.
func AsFloat64(m map[string]any, key string, def float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return def
}

// AsTime returns the time value for key. Neo4j datetime() values are
// delivered as time.Time by the driver.
func AsTime(m map[string]any, key string, def time.Time) time.Time {
	if v, ok := m[key].(time.Time); ok {
		return v
	}
	return def
}
