package connector

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// encodeArrow builds an Arrow record batch from scanned rows. Column types
// are inferred from the first non-NULL value per column; columns with no
// values, or with types outside the common vocabulary, fall back to strings.
// The returned record must be Released by the caller.
func encodeArrow(cols []string, rows []map[string]any) (arrow.Record, error) {
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		fields[i] = arrow.Field{Name: col, Type: inferArrowType(col, rows), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for _, row := range rows {
		for i, col := range cols {
			if err := appendArrowValue(builder.Field(i), row[col]); err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
		}
	}
	return builder.NewRecord(), nil
}

// inferArrowType picks the Arrow type for a column from its first non-NULL value.
func inferArrowType(col string, rows []map[string]any) arrow.DataType {
	for _, row := range rows {
		switch row[col].(type) {
		case nil:
			continue
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return arrow.PrimitiveTypes.Int64
		case float32, float64:
			return arrow.PrimitiveTypes.Float64
		case bool:
			return arrow.FixedWidthTypes.Boolean
		default:
			return arrow.BinaryTypes.String
		}
	}
	return arrow.BinaryTypes.String
}

// appendArrowValue appends one cell to a column builder, coercing the Go
// value to the column's inferred type.
func appendArrowValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch fb := b.(type) {
	case *array.Int64Builder:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		fb.Append(n)
	case *array.Float64Builder:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		fb.Append(f)
	case *array.BooleanBuilder:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		fb.Append(bv)
	case *array.StringBuilder:
		fb.Append(formatValue(v))
	default:
		return fmt.Errorf("unsupported arrow builder %T", b)
	}
	return nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch f := v.(type) {
	case float32:
		return float64(f), nil
	case float64:
		return f, nil
	default:
		return 0, fmt.Errorf("expected float, got %T", v)
	}
}
