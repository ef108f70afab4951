package mcp

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Continuation tokens follow the same opaque, deterministic scheme as the
// metadata store's ListFiles cursor (internal/store/metadata.go): a
// base64-encoded "offset:<N>" string. Reusing the shape here keeps the
// router's pagination indistinguishable from the store's at the wire
// level, even though the two layers paginate independently.

// encodeContinuationToken produces an opaque token for the given offset.
func encodeContinuationToken(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("offset:%d", offset)))
}

// decodeContinuationToken recovers the offset from a token produced by
// encodeContinuationToken. An empty token decodes to offset 0.
func decodeContinuationToken(token string) (int, error) {
	if token == "" {
		return 0, nil
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("invalid continuation token")
	}

	s := string(raw)
	if !strings.HasPrefix(s, "offset:") {
		return 0, fmt.Errorf("invalid continuation token")
	}

	offset, err := strconv.Atoi(strings.TrimPrefix(s, "offset:"))
	if err != nil {
		return 0, fmt.Errorf("invalid continuation token")
	}
	if offset < 0 {
		return 0, fmt.Errorf("continuation token must be non-negative")
	}

	return offset, nil
}

// tokensPerChar mirrors internal/chunk's documented token estimator
// (tokens := len(text)/4) so max_tokens budgets the same unit everywhere
// in the system.
const tokensPerChar = 4

// estimateTokens approximates a string's model-facing token count.
func estimateTokens(s string) int {
	return len(s) / tokensPerChar
}

// defaultMaxTokens is used when a list-or-chunked tool call omits max_tokens.
const defaultMaxTokens = 2000

// paginateStrings slices items[offset:] starting from the cursor, then
// truncates whole items (never mid-item) until the running size estimate
// would exceed the token budget. It returns the selected items, whether
// further items remain, and the next continuation token when truncated.
func paginateStrings(items []string, offset, maxTokens int) (selected []string, hasMore bool, nextToken string) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if offset >= len(items) {
		return nil, false, ""
	}

	budget := 0
	for i := offset; i < len(items); i++ {
		cost := estimateTokens(items[i])
		if i > offset && budget+cost > maxTokens {
			return items[offset:i], true, encodeContinuationToken(i)
		}
		budget += cost
	}

	return items[offset:], false, ""
}
