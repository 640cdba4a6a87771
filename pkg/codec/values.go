package codec

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/graphwire/pkg/jsonval"
	"github.com/matzehuels/graphwire/pkg/model"
)

// =============================================================================
// Write
// =============================================================================

// scalar returns the JSON form of a data value. Inside feature-map entries
// enums and custom data are always written in their string form.
func (e *encoder) scalar(v any, f *model.Feature, kind Kind, inEntry bool) any {
	switch kind {
	case KindBool:
		b, _ := v.(bool)
		return b
	case KindByte, KindDouble, KindFloat, KindInt, KindLong, KindShort:
		if jsonval.KindOf(v) == jsonval.KindNumber {
			return v
		}
		return 0
	case KindChar:
		r, ok := v.(rune)
		if !ok || r == 0 {
			return ""
		}
		return string(r)
	case KindString:
		if v == nil {
			return nil
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	case KindDate:
		t, ok := v.(time.Time)
		if !ok {
			return nil
		}
		return t.UnixMilli()
	case KindEnum:
		if !inEntry && e.style.Has(StyleBinaryEnumerator) {
			if lit, ok := v.(*model.EnumLiteral); ok {
				return lit.Value
			}
			return nil
		}
		return e.dataString(v, f)
	case KindData, KindDataList, KindFeatureMap:
		return e.dataString(v, f)
	}
	panic(fmt.Sprintf("codec: %s is not a data kind", kind))
}

func (e *encoder) dataString(v any, f *model.Feature) any {
	dt := f.DataType()
	if dt == nil {
		return nil
	}
	s, ok := dt.ConvertToString(v)
	if !ok {
		return nil
	}
	return s
}

// dataList writes the elements of a many-valued attribute in string form.
func (e *encoder) dataList(l *model.List, f *model.Feature) []any {
	out := make([]any, l.Len())
	for i := range out {
		out[i] = e.dataString(l.At(i), f)
	}
	return out
}

// =============================================================================
// Read
// =============================================================================

// scalar reads a data value. Malformed values do not fail the decode: they
// fall back to false, zero or nil and are logged at debug level.
func (d *decoder) scalar(fd *decFeature, c *cursor, inEntry bool) any {
	v, _ := c.next()
	switch fd.kind {
	case KindBool:
		b, ok := jsonval.Bool(v)
		if !ok {
			d.recovered(fd, v)
		}
		return b
	case KindByte:
		return int8(d.integer(fd, v))
	case KindShort:
		return int16(d.integer(fd, v))
	case KindInt:
		return int32(d.integer(fd, v))
	case KindLong:
		return d.integer(fd, v)
	case KindDouble:
		return d.float(fd, v)
	case KindFloat:
		return float32(d.float(fd, v))
	case KindChar:
		s, ok := jsonval.String(v)
		if !ok || s == "" {
			d.recovered(fd, v)
			return rune(0)
		}
		r, _ := utf8.DecodeRuneInString(s)
		return r
	case KindString:
		s, ok := jsonval.String(v)
		if !ok {
			d.recovered(fd, v)
			return nil
		}
		return s
	case KindDate:
		if v == nil {
			return nil
		}
		ms, ok := jsonval.Int(v)
		if !ok {
			d.recovered(fd, v)
			return nil
		}
		return time.UnixMilli(ms).UTC()
	case KindEnum:
		if !inEntry && d.style.Has(StyleBinaryEnumerator) {
			return d.ordinal(fd, v)
		}
		return d.fromString(fd, v)
	case KindData, KindDataList, KindFeatureMap:
		return d.fromString(fd, v)
	}
	panic(fmt.Sprintf("codec: %s is not a data kind", fd.kind))
}

func (d *decoder) integer(fd *decFeature, v any) int64 {
	n, ok := jsonval.Int(v)
	if !ok {
		d.recovered(fd, v)
	}
	return n
}

func (d *decoder) float(fd *decFeature, v any) float64 {
	f, ok := jsonval.Float(v)
	if !ok {
		d.recovered(fd, v)
	}
	return f
}

func (d *decoder) ordinal(fd *decFeature, v any) any {
	enum, _ := fd.feature.DataType().(*model.Enum)
	n, ok := jsonval.Int(v)
	if !ok || enum == nil {
		d.recovered(fd, v)
		return nil
	}
	lit := enum.ByValue(int(n))
	if lit == nil {
		d.recovered(fd, v)
		return nil
	}
	return lit
}

func (d *decoder) fromString(fd *decFeature, v any) any {
	if v == nil {
		return nil
	}
	s, ok := jsonval.String(v)
	dt := fd.feature.DataType()
	if !ok || dt == nil {
		d.recovered(fd, v)
		return nil
	}
	x, err := dt.CreateFromString(s)
	if err != nil {
		d.recovered(fd, v)
		return nil
	}
	return x
}

// dataList reads the string elements of a many-valued attribute and appends
// them to l.
func (d *decoder) dataList(l *model.List, fd *decFeature, c *cursor) error {
	v, _ := c.next()
	arr, ok := jsonval.Array(v)
	if !ok {
		return formatError("feature %s: expected array, got %s", fd.feature, jsonval.Describe(v))
	}
	vals := d.scratch.values.get(len(arr))
	defer d.scratch.values.put(vals)
	k := 0
	for _, item := range arr {
		if x := d.fromString(fd, item); x != nil {
			vals[k] = x
			k++
		}
	}
	l.InsertUnique(l.Len(), vals[:k]...)
	return nil
}

func (d *decoder) recovered(fd *decFeature, v any) {
	d.stats.Recovered++
	d.logger.Debug("recovered malformed value",
		"feature", fd.feature.String(),
		"kind", fd.kind.String(),
		"value", jsonval.Describe(v))
}
