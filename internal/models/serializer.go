package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"gorm.io/gorm/schema"
)

// NumberSerializerName tags JSON columns whose numbers must survive a round trip exactly.
const NumberSerializerName = "jsonnumber"

func init() {
	schema.RegisterSerializer(NumberSerializerName, NumberJSONSerializer{})
}

// NumberJSONSerializer stores a value as JSON like gorm's json serializer, but decodes numbers
// into json.Number instead of float64.
type NumberJSONSerializer struct{}

func (NumberJSONSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue interface{}) error {
	fieldValue := reflect.New(field.FieldType)

	if dbValue != nil {
		var data []byte
		switch v := dbValue.(type) {
		case []byte:
			data = v
		case string:
			data = []byte(v)
		default:
			return fmt.Errorf("unsupported json column value %T", dbValue)
		}

		if len(data) > 0 {
			if err := DecodeJSON(data, fieldValue.Interface()); err != nil {
				return err
			}
		}
	}

	field.ReflectValueOf(ctx, dst).Set(fieldValue.Elem())
	return nil
}

func (NumberJSONSerializer) Value(ctx context.Context, field *schema.Field, dst reflect.Value, fieldValue interface{}) (interface{}, error) {
	result, err := json.Marshal(fieldValue)
	if string(result) == "null" {
		if field.TagSettings["NOT NULL"] != "" {
			return "", nil
		}
		return nil, err
	}
	return string(result), err
}

// DecodeJSON unmarshals data into v keeping numbers as json.Number.
func DecodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
