package encoding

import (
	"reflect"
	"strconv"

	"github.com/tryfix/errors"
)

// IntEncoder encodes split indexes into record keys.
type IntEncoder struct{}

func (IntEncoder) Encode(v interface{}) ([]byte, error) {
	switch i := v.(type) {
	case int:
		return []byte(strconv.Itoa(i)), nil
	case int32:
		return []byte(strconv.FormatInt(int64(i), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(i, 10)), nil
	}

	return nil, errors.Errorf(`invalid type [%v] expected int`, reflect.TypeOf(v))
}

func (IntEncoder) Decode(data []byte) (interface{}, error) {
	i, err := strconv.Atoi(string(data))
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot decode data`)
	}

	return i, nil
}
