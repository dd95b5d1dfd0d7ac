package encoding

import (
	"reflect"

	"github.com/tryfix/errors"
)

// StringEncoder is the default output encoder of string sources.
type StringEncoder struct{}

func (s StringEncoder) Encode(v interface{}) ([]byte, error) {
	switch str := v.(type) {
	case string:
		return []byte(str), nil
	case []byte:
		return str, nil
	}

	return nil, errors.Errorf(`invalid type [%+v] expected string`, reflect.TypeOf(v))
}

func (s StringEncoder) Decode(data []byte) (interface{}, error) {
	return string(data), nil
}
