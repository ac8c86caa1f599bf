package kaggle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// recordsFromJSON converts an API listing into the record shape produced by
// the CLI: keys lower-cased, scalars stringified, entries without ref dropped.
func recordsFromJSON(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var items []map[string]any
	if err := dec.Decode(&items); err != nil {
		return nil, &DecodeError{Format: "json", Err: err}
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec := make(Record, len(item))
		for k, v := range item {
			rec[strings.ToLower(k)] = stringifyValue(v)
		}
		if rec.Ref() == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// usableRecords drops rows without an identity value
func usableRecords(rows []Record) []Record {
	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		if r.Ref() != "" {
			records = append(records, r)
		}
	}
	return records
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
