package httpapi

import (
	"strconv"
	"strings"
)

func parseBearer(h string) string {
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func parseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// parseResourcePath 將 "/api/<resource>/{id}[/action]" 拆成 id 與 action。
func parseResourcePath(path, prefix string) (int64, string) {
	if !strings.HasPrefix(path, prefix) {
		return 0, ""
	}
	trimmed := strings.TrimPrefix(path, prefix)
	parts := strings.SplitN(trimmed, "/", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, ""
	}
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}
	return id, action
}
