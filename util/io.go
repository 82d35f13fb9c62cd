package util

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
)

func ReadJSONFromFile[T any](file string) (T, error) {
	var value T
	data, err := os.ReadFile(file)
	if err != nil {
		return value, err
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("decode %s: %w", file, err)
	}
	return value, nil
}

func WriteJSONToFile[T any](value T, file string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o644)
}

type _CSVField struct {
	index  int
	column int
	kind   reflect.Kind
}

// Reads rows of a csv file with header into structs of type T.
//
// Columns are matched against the "csv" struct tag, unknown columns are ignored.
// Rows with a wrong field count are skipped. The file is opened eagerly so that
// a missing file is reported before iteration starts.
func ReadCSVFromFile[T any](filename string, delimiter rune) (func(yield func(T) bool), error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read header of %s: %w", filename, err)
	}
	fields := _MapCSVFields[T](header)

	return func(yield func(T) bool) {
		defer file.Close()
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				continue
			}
			if len(record) != len(header) {
				continue
			}
			if !yield(_DecodeCSVRow[T](record, fields)) {
				break
			}
		}
	}, nil
}

func _MapCSVFields[T any](header []string) List[_CSVField] {
	name_row_mapping := NewDict[string, int](len(header))
	for i, name := range header {
		// some exporters prepend a utf-8 bom to the first column
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		name_row_mapping[name] = i
	}

	var val T
	typ := reflect.TypeOf(val)
	fields := NewList[_CSVField](typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("csv")
		if tag == "" || !name_row_mapping.ContainsKey(tag) {
			continue
		}
		column := name_row_mapping[tag]
		switch field.Type.Kind() {
		case reflect.Bool:
			fields.Add(_CSVField{i, column, reflect.Bool})
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			fields.Add(_CSVField{i, column, reflect.Int})
		case reflect.Float32, reflect.Float64:
			fields.Add(_CSVField{i, column, reflect.Float64})
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			fields.Add(_CSVField{i, column, reflect.Uint})
		case reflect.String:
			fields.Add(_CSVField{i, column, reflect.String})
		}
	}
	return fields
}

func _DecodeCSVRow[T any](record []string, fields List[_CSVField]) T {
	var value T
	t := reflect.ValueOf(&value).Elem()
	for _, field := range fields {
		raw := strings.TrimSpace(record[field.column])
		if raw == "" {
			continue
		}
		f := t.Field(field.index)
		switch field.kind {
		case reflect.Bool:
			num, err := strconv.ParseBool(raw)
			if err == nil {
				f.SetBool(num)
			}
		case reflect.Int:
			num, err := strconv.ParseInt(raw, 10, 64)
			if err == nil {
				f.SetInt(num)
			}
		case reflect.Uint:
			num, err := strconv.ParseUint(raw, 10, 64)
			if err == nil {
				f.SetUint(num)
			}
		case reflect.Float64:
			num, err := strconv.ParseFloat(raw, 64)
			if err == nil {
				f.SetFloat(num)
			}
		case reflect.String:
			f.SetString(raw)
		}
	}
	return value
}
