package redshift

import "strings"

// typeMap maps Redshift catalog type names to the common lower-cased
// vocabulary: 64-bit integer variants contain "int64", textual types
// contain "string".
var typeMap = map[string]string{
	"bigint":                      "int64",
	"int8":                        "int64",
	"integer":                     "int32",
	"int":                         "int32",
	"int4":                        "int32",
	"smallint":                    "int16",
	"int2":                        "int16",
	"character varying":           "string",
	"varchar":                     "string",
	"character":                   "string",
	"char":                        "string",
	"bpchar":                      "string",
	"nchar":                       "string",
	"nvarchar":                    "string",
	"text":                        "string",
	"double precision":            "float64",
	"float8":                      "float64",
	"real":                        "float32",
	"float4":                      "float32",
	"numeric":                     "decimal",
	"decimal":                     "decimal",
	"boolean":                     "bool",
	"timestamp without time zone": "timestamp",
	"timestamp with time zone":    "timestamptz",
	"time without time zone":      "time",
	"time with time zone":         "timetz",
}

// normalizeType maps a catalog type like "character varying(256)" to the
// common vocabulary; unknown types fall back to their lower-cased name.
func normalizeType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if mapped, ok := typeMap[t]; ok {
		return mapped
	}
	return t
}

// synthesizeDDL builds a CREATE TABLE statement from catalog metadata.
// Redshift has no SHOW CREATE TABLE, so the definition text is reconstructed.
func synthesizeDDL(fullName string, cols []rawColumn) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(fullName)
	sb.WriteString(" (\n")

	pk := pkColumns(cols)
	for i, col := range cols {
		sb.WriteString("    ")
		sb.WriteString(col.name)
		sb.WriteString(" ")
		sb.WriteString(col.dataType)
		if !col.nullable {
			sb.WriteString(" NOT NULL")
		}
		if i < len(cols)-1 || len(pk) > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	if len(pk) > 0 {
		sb.WriteString("    PRIMARY KEY (")
		sb.WriteString(strings.Join(pk, ", "))
		sb.WriteString(")\n")
	}
	sb.WriteString(");")
	return sb.String()
}

func pkColumns(cols []rawColumn) []string {
	var pk []string
	for _, col := range cols {
		if col.primaryKey {
			pk = append(pk, col.name)
		}
	}
	return pk
}
