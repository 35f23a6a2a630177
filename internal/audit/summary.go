package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// summaryHashLen is the truncated hex width used for content digests in
// privacy summaries.
const summaryHashLen = 12

// SummarizeInput reduces raw input content to a non-reversible summary:
// a truncated content digest prefixed with "hash:". Raw content must never
// be stored in the ledger; callers pass the result as Event.InputSummary.
//
// Content that cannot be serialized is summarized by its type and rendered
// length instead of failing the caller's operation.
func SummarizeInput(v any) string {
	if v == nil {
		return ""
	}
	data, ok := serialize(v)
	if !ok {
		return typeSummary(v)
	}
	return "hash:" + contentDigest(data)
}

// SummarizeOutput reduces raw output content to its length plus a truncated
// content digest.
func SummarizeOutput(v any) string {
	if v == nil {
		return ""
	}
	data, ok := serialize(v)
	if !ok {
		return typeSummary(v)
	}
	return fmt.Sprintf("len:%d hash:%s", len(data), contentDigest(data))
}

func serialize(v any) ([]byte, bool) {
	switch c := v.(type) {
	case string:
		return []byte(c), true
	case []byte:
		return c, true
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return data, true
	}
}

func contentDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:summaryHashLen]
}

func typeSummary(v any) string {
	return fmt.Sprintf("type:%T len:%d", v, len(fmt.Sprintf("%v", v)))
}
