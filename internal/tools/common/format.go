package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/marco-looy/pega-dx-mcp/internal/dx"
)

// FormatSuccess renders an upstream payload as Markdown. The first line is
// always a "##" heading naming the operation; the body renders the
// response fields with absent values as "N/A". Given the same inputs the
// output is identical, so snapshots are stable.
func FormatSuccess(op string, res *dx.Result, fctx *FormatContext) string {
	var sb strings.Builder
	sb.WriteString("## ")
	sb.WriteString(op)
	sb.WriteString("\n")

	if fctx != nil && fctx.AutoFetchedETag {
		sb.WriteString("\n_The current eTag was fetched automatically before this write._\n")
	}

	if res != nil && len(res.Data) > 0 {
		sb.WriteString("\n")
		writeObject(&sb, res.Data, 0)
	} else if res == nil || len(res.Raw) == 0 {
		sb.WriteString("\nThe operation completed with no response body.\n")
	}

	if res != nil && res.ETag != "" {
		fmt.Fprintf(&sb, "\n**eTag**: `%s` (use for the next conditional write)\n", res.ETag)
	}

	if fctx != nil && fctx.Session != nil && fctx.Session.AuthMode == "session" {
		sb.WriteString("\n_Executed with per-call session credentials._\n")
	}
	return sb.String()
}

// FormatError renders a domain error as Markdown: an error heading, the
// kind, the upstream message and details, then kind-specific remediation.
// Raw HTTP bodies and stack traces never appear.
func FormatError(op string, err error, fctx *FormatContext) string {
	var derr *dx.Error
	if !errors.As(err, &derr) {
		derr = &dx.Error{Kind: dx.KindInternalServerError, Message: err.Error()}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## ❌ %s failed\n\n", op)
	fmt.Fprintf(&sb, "- **Error**: %s\n", derr.Kind)
	fmt.Fprintf(&sb, "- **Message**: %s\n", valueOrNA(derr.Message))
	if derr.Status != 0 {
		fmt.Fprintf(&sb, "- **HTTP status**: %d\n", derr.Status)
	}

	// A wrapped cause carries the failure that preceded this one, e.g. the
	// read error under an ETAG_FETCH_FAILED.
	var cause *dx.Error
	if errors.As(derr.Cause, &cause) {
		fmt.Fprintf(&sb, "- **Caused by**: %s: %s\n", cause.Kind, valueOrNA(cause.Message))
		if len(cause.Details) > 0 && len(derr.Details) == 0 {
			derr = &dx.Error{Kind: derr.Kind, Message: derr.Message, Status: derr.Status, Details: cause.Details}
		}
	}

	if len(derr.Details) > 0 {
		sb.WriteString("\n### Upstream details\n")
		for _, d := range derr.Details {
			msg := d.LocalizedValue
			if msg == "" {
				msg = d.Message
			}
			if d.Field != "" {
				fmt.Fprintf(&sb, "- %s (field: %s)\n", valueOrNA(msg), d.Field)
			} else {
				fmt.Fprintf(&sb, "- %s\n", valueOrNA(msg))
			}
		}
	}

	if steps := remediation(derr.Kind); len(steps) > 0 {
		sb.WriteString("\n### What to try\n")
		for _, s := range steps {
			sb.WriteString("- ")
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// remediation is the per-kind guidance table rendered under every error.
func remediation(kind dx.Kind) []string {
	switch kind {
	case dx.KindInvalidArgument:
		return []string{"Check the tool's input schema via tools/list and supply every required field."}
	case dx.KindConfigInvalid:
		return []string{
			"Configure PEGA_BASE_URL, PEGA_CLIENT_ID and PEGA_CLIENT_SECRET on the server,",
			"or pass a complete sessionCredentials object with this call.",
		}
	case dx.KindAuthFailed:
		return []string{
			"Verify the OAuth2 client ID and secret.",
			"Confirm the client registration allows the client_credentials grant.",
		}
	case dx.KindUnauthorized:
		return []string{
			"The token was refreshed once and the upstream still refused it.",
			"Check that the operator mapped to these credentials is enabled for the application.",
		}
	case dx.KindForbidden:
		return []string{"The authenticated operator lacks access to this case or action. Review its access group."}
	case dx.KindNotFound:
		return []string{"Verify the ID: full handles look like ON6E5R-DIYREC-WORK R-1001 or ASSIGN-WORKLIST ...!APPROVAL_FLOW."}
	case dx.KindBadRequest:
		return []string{"The upstream rejected the request shape. Check field names and value formats against the case type."}
	case dx.KindPreconditionFailed:
		return []string{
			"The eTag is stale: another writer changed the entity.",
			"Re-read the entity (or omit eTag to let the tool fetch the current one) and retry.",
		}
	case dx.KindConflict:
		return []string{"The operation conflicts with the entity's current state. Re-read it and reassess."}
	case dx.KindValidationFail:
		return []string{"A business rule rejected the submitted content. The upstream details above name the failing fields."}
	case dx.KindLocked:
		return []string{"Another operator holds the pessimistic lock on this case. Retry after they release it."}
	case dx.KindFailedDependency:
		return []string{"A dependent upstream operation failed. Inspect the details and retry once the dependency is healthy."}
	case dx.KindETagFetchFailed:
		return []string{
			"The preliminary read to obtain the current eTag failed, so the write was not attempted.",
			"Resolve the read failure above, or supply an eTag explicitly.",
		}
	case dx.KindETagMissing:
		return []string{"The entity read returned no eTag. Verify the action expects optimistic concurrency."}
	case dx.KindTimeout:
		return []string{"The call exceeded its deadline. Retry, or raise PEGA_DX_MCP_TIMEOUT_SECONDS for slow environments."}
	case dx.KindConnectionError:
		return []string{"Could not reach the Pega deployment. Check the base URL, network path and TLS setup."}
	case dx.KindInternalServerError:
		return []string{"The upstream reported an internal failure. Check the Pega logs for the correlation details."}
	}
	return nil
}

// writeObject renders a decoded JSON object deterministically: keys sorted,
// scalars as bullet items, top-level nested objects as sections, arrays at
// any level as sections of numbered items, and objects below the top level
// (or inside arrays) as compact JSON (which Go marshals with sorted keys).
func writeObject(sb *strings.Builder, m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Scalars first, then nested structures, each group in key order.
	for _, k := range keys {
		if !isNested(m[k]) {
			fmt.Fprintf(sb, "- **%s**: %s\n", k, scalarString(m[k]))
		}
	}
	for _, k := range keys {
		v := m[k]
		if !isNested(v) {
			continue
		}
		switch vv := v.(type) {
		case map[string]any:
			if depth == 0 {
				fmt.Fprintf(sb, "\n### %s\n", k)
				writeObject(sb, vv, depth+1)
			} else {
				fmt.Fprintf(sb, "- **%s**: %s\n", k, compactJSON(vv))
			}
		case []any:
			fmt.Fprintf(sb, "\n### %s\n", k)
			writeList(sb, vv)
		}
	}
}

func writeList(sb *strings.Builder, items []any) {
	if len(items) == 0 {
		sb.WriteString("_none_\n")
		return
	}
	for i, item := range items {
		switch vv := item.(type) {
		case map[string]any:
			fmt.Fprintf(sb, "%d. %s\n", i+1, compactJSON(vv))
		default:
			fmt.Fprintf(sb, "%d. %s\n", i+1, scalarString(vv))
		}
	}
}

func isNested(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func scalarString(v any) string {
	switch vv := v.(type) {
	case nil:
		return "N/A"
	case string:
		return valueOrNA(vv)
	case float64:
		if vv == float64(int64(vv)) {
			return fmt.Sprintf("%d", int64(vv))
		}
		return fmt.Sprintf("%g", vv)
	case bool:
		return fmt.Sprintf("%t", vv)
	default:
		return fmt.Sprintf("%v", vv)
	}
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "N/A"
	}
	return "`" + string(b) + "`"
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
