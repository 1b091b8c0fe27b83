package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the column names of T's "db" tags, descending into
// embedded structs such as entity.BaseEntity. Fields tagged "-" are skipped.
//
// Usage:
//
//	columns := ExtractDBColumns[receipt.Receipt]()
//	// ["id", "active", "version", "created_at", "updated_at", "receipt_number", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	meta := metadataOf(t)
	cols := make([]string, 0, len(meta.fields))
	for _, f := range meta.fields {
		if f.embedded {
			cols = append(cols, columnsOf(t.Field(f.index).Type)...)
			continue
		}
		cols = append(cols, f.column)
	}
	return cols
}

type fieldInfo struct {
	index    int
	column   string
	embedded bool
}

type typeMetadata struct {
	fields []fieldInfo
}

// typeCache holds one *typeMetadata per struct type.
var typeCache sync.Map

func metadataOf(t reflect.Type) *typeMetadata {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.(*typeMetadata)
	}

	meta := &typeMetadata{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous {
				meta.fields = append(meta.fields, fieldInfo{index: i, embedded: true})
				continue
			}
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			meta.fields = append(meta.fields, fieldInfo{index: i, column: tag})
		}
	}

	actual, _ := typeCache.LoadOrStore(t, meta)
	return actual.(*typeMetadata)
}

// StructToMap converts a struct to a column map using "db" tags.
// Embedded structs are flattened; untagged and "-" fields are ignored.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	fillMap(rv, res)
	return res
}

func fillMap(rv reflect.Value, res map[string]any) {
	for _, f := range metadataOf(rv.Type()).fields {
		fv := rv.Field(f.index)
		if f.embedded {
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				fillMap(fv, res)
			}
			continue
		}
		res[f.column] = fv.Interface()
	}
}
