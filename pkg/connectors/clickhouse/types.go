package clickhouse

import "strings"

// typeAliases maps ClickHouse base types whose lower-cased name falls
// outside the common vocabulary. Types not listed normalize to their
// lower-cased base name, which already satisfies the vocabulary (Int64 →
// int64, FixedString → fixedstring, and so on).
var typeAliases = map[string]string{
	"uuid":   "string",
	"enum8":  "string",
	"enum16": "string",
	"ipv4":   "string",
	"ipv6":   "string",
}

// normalizeType maps an engine-native type like Nullable(Int64) or
// LowCardinality(String) to the lower-cased common vocabulary, reporting
// nullability separately.
func normalizeType(raw string) (typ string, nullable bool) {
	inner := raw
	for {
		switch {
		case strings.HasPrefix(inner, "Nullable(") && strings.HasSuffix(inner, ")"):
			nullable = true
			inner = inner[len("Nullable(") : len(inner)-1]
		case strings.HasPrefix(inner, "LowCardinality(") && strings.HasSuffix(inner, ")"):
			inner = inner[len("LowCardinality(") : len(inner)-1]
		default:
			base := inner
			if i := strings.IndexByte(base, '('); i >= 0 {
				base = base[:i]
			}
			base = strings.ToLower(strings.TrimSpace(base))
			if alias, ok := typeAliases[base]; ok {
				return alias, nullable
			}
			return base, nullable
		}
	}
}
