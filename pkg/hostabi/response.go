package hostabi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/impactwatch/extension/internal/dispatcher"
)

// Call routes one host call through the configured dispatcher and returns
// the formatted response. A command without args may carry its payload
// after a '|' separator (":FRAME:|{...}").
func Call(command string, args []string) string {
	d := Config.dispatcher
	if d == nil {
		return formatDispatchResponse(nil, fmt.Errorf("extension not ready"))
	}

	if len(args) == 0 && !d.HasHandler(command) {
		if i := strings.IndexByte(command, '|'); i >= 0 {
			command, args = command[:i], []string{command[i+1:]}
		}
	}

	if !d.HasHandler(command) {
		return formatDispatchResponse(nil, fmt.Errorf("no handler registered for %s", command))
	}

	result, err := d.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	return formatDispatchResponse(result, err)
}

// formatDispatchResponse renders ["ok", <result>] or ["error", "<message>"].
// Strings use the host's quoting (inner quotes doubled), floats that are
// not finite are sent as strings, everything else is JSON.
func formatDispatchResponse(result any, err error) string {
	if err != nil {
		return fmt.Sprintf(`["error", %s]`, quote(err.Error()))
	}

	var value string
	switch v := result.(type) {
	case nil:
		return `["ok"]`
	case string:
		value = quote(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			value = quote(strconv.FormatFloat(v, 'f', -1, 64))
		} else {
			value = strconv.FormatFloat(v, 'f', -1, 64)
		}
	default:
		b, mErr := json.Marshal(v)
		if mErr != nil {
			return fmt.Sprintf(`["error", %s]`, quote(mErr.Error()))
		}
		value = string(b)
	}
	return fmt.Sprintf(`["ok", %s]`, value)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// truncateReply cuts a response so it fits an output buffer of size bytes,
// leaving room for the terminating NUL. It never splits a UTF-8 sequence.
func truncateReply(s string, size int) string {
	if size <= 0 {
		return ""
	}
	if len(s) < size {
		return s
	}
	n := size - 1
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
