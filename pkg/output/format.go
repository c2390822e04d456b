// Package output renders calculator results as pretty tables, CSV or JSON.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/format"
	"github.com/iwvelando/vehicle-afford/pkg/validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Field is one leaf of a flattened result, keyed by its dotted JSON path.
type Field struct {
	Key   string
	Value any
}

// Flatten walks the JSON form of v and returns its leaves in document order.
// Nested objects join keys with dots and array elements use [i].
func Flatten(v any) ([]Field, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields []Field
	if err := flattenValue(dec, "", &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func flattenValue(dec *json.Decoder, prefix string, fields *[]Field) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		*fields = append(*fields, Field{Key: prefix, Value: tok})
		return nil
	}

	switch delim {
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("decode result: %w", err)
			}
			key := keyTok.(string)
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flattenValue(dec, key, fields); err != nil {
				return err
			}
		}
	case '[':
		for i := 0; dec.More(); i++ {
			if err := flattenValue(dec, fmt.Sprintf("%s[%d]", prefix, i), fields); err != nil {
				return err
			}
		}
	}
	// closing delimiter
	_, err = dec.Token()
	return err
}

// Write renders v to w in the named format.
func Write(w io.Writer, outputFormat, title string, v any) error {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	if outputFormat == constants.OutputFormatJSON {
		return JSONFormat(w, v)
	}

	fields, err := Flatten(v)
	if err != nil {
		return err
	}
	if outputFormat == constants.OutputFormatCSV {
		return CsvFormat(w, fields)
	}
	return PrettyFormat(w, title, fields)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, title string, fields []Field) error {
	p := message.NewPrinter(language.English)

	width := len("Field")
	for _, f := range fields {
		if len(f.Key) > width {
			width = len(f.Key)
		}
	}

	if _, err := fmt.Fprintf(w, "--- %s ---\n", title); err != nil {
		return err
	}
	fmt.Fprintf(w, "%-*s | Value\n", width, "Field")
	fmt.Fprintf(w, "%-*s | _____\n", width, "_____")
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%-*s | %s\n", width, f.Key, prettyValue(p, f.Key, f.Value)); err != nil {
			return err
		}
	}
	return nil
}

// percentKey reports whether the leaf holds a 0-100 share, named *_percentage or *_ratio.
func percentKey(key string) bool {
	leaf := key[strings.LastIndex(key, ".")+1:]
	return strings.HasSuffix(leaf, "_percentage") || strings.HasSuffix(leaf, "_ratio")
}

func prettyValue(p *message.Printer, key string, v any) string {
	switch val := v.(type) {
	case json.Number:
		if percentKey(key) {
			if f, err := val.Float64(); err == nil {
				return format.Percent(f)
			}
		}
		if i, err := val.Int64(); err == nil {
			return p.Sprintf("%d", i)
		}
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		if math.Abs(f) >= 1 {
			return format.NumericCurrency(f)
		}
		return format.Decimal(f)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "-"
	default:
		return fmt.Sprint(val)
	}
}

// CsvFormat outputs one "field","value" row per leaf.
func CsvFormat(w io.Writer, fields []Field) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"field", "value"}); err != nil {
		return err
	}
	for _, f := range fields {
		if err := cw.Write([]string{f.Key, csvValue(f.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvValue(v any) string {
	switch val := v.(type) {
	case json.Number:
		return val.String()
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// JSONFormat outputs indented JSON.
func JSONFormat(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
