package tools

import "github.com/oxsci/toolgate/internal/toolctx"

// Argument accessors. Validated arguments arrive as generic JSON values, so
// numbers may be float64 (from the wire) or int (from shape defaults).

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func argStrings(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// contextString reads a string value from the shared context, falling back
// to def when absent or of another type.
func contextString(sc *toolctx.Context, key, def string) string {
	if v, ok := sc.Get(key, def).(string); ok {
		return v
	}
	return def
}

// contextInt reads an integer value from the shared context.
func contextInt(sc *toolctx.Context, key string, def int) int {
	switch v := sc.Get(key, def).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}
