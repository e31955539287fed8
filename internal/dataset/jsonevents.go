package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"oee-analyzer-go/internal/logger"
	"oee-analyzer-go/internal/schema"
	"oee-analyzer-go/internal/types"
)

// LoadEventsJSON reads a downtime event log exported as JSON: either an
// array of event objects or an object whose "events" member is that array.
// Keys resolve through the workbook header aliases per object; when two keys
// of one object resolve to the same column the first wins and the rest are
// ignored. A missing reason or start is a *schema.MismatchError.
func LoadEventsJSON(r io.Reader, loc *time.Location) ([]types.EventRecord, error) {
	log := logger.New().WithField("component", "dataset.loader").WithField("format", "json")
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("load events: read json: %w", err)
	}
	t, err := eventTable(raw)
	if err != nil {
		log.WithError(err).Warn("event json rejected")
		return nil, fmt.Errorf("load events: %w", err)
	}
	if len(t.Rows) == 0 {
		log.Info("event json is empty")
		return nil, nil
	}
	t, err = schema.Events.Normalize(t)
	if err != nil {
		log.WithError(err).Warn("event json rejected")
		return nil, fmt.Errorf("load events: %w", err)
	}
	out := EventsFromTable(t, loc)
	if dropped := len(t.Rows) - len(out); dropped > 0 {
		log.WithField("dropped", dropped).Warn("events without a readable start time skipped")
	}
	log.WithField("events", len(out)).Info("events loaded")
	return out, nil
}

// IsJSON reports whether data looks like a JSON document rather than a
// workbook.
func IsJSON(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && (data[0] == '[' || data[0] == '{')
}

func eventTable(raw []byte) (schema.Table, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var wrapper struct {
			Events json.RawMessage `json:"events"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return schema.Table{}, fmt.Errorf("decode json: %w", err)
		}
		if wrapper.Events == nil {
			return schema.Table{}, errors.New(`json object has no "events" array`)
		}
		raw = wrapper.Events
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return schema.Table{}, fmt.Errorf("decode json: %w", err)
	}
	t := schema.Table{Sheet: schema.Events.Name}
	col := map[string]int{}
	for i, item := range items {
		keys, vals, err := orderedFields(item)
		if err != nil {
			return schema.Table{}, fmt.Errorf("event %d: %w", i, err)
		}
		row := make([]string, len(t.Columns))
		taken := map[string]bool{}
		for k, key := range keys {
			name := schema.Events.InternalName(key)
			if taken[name] {
				continue
			}
			taken[name] = true
			idx, ok := col[name]
			if !ok {
				idx = len(t.Columns)
				col[name] = idx
				t.Columns = append(t.Columns, name)
				for j := range t.Rows {
					t.Rows[j] = append(t.Rows[j], "")
				}
				row = append(row, "")
			}
			row[idx] = vals[k]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// orderedFields decodes one JSON object keeping key order. Values are
// rendered as the strings a spreadsheet cell would hold; null is "".
func orderedFields(item json.RawMessage) (keys, vals []string, err error) {
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("not a json object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		keys = append(keys, key)
		vals = append(vals, cellText(v))
	}
	return keys, vals, nil
}

func cellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
