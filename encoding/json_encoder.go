package encoding

import (
	"github.com/goccy/go-json"
	"github.com/tryfix/errors"
)

// JsonEncoder encodes arbitrary values as JSON. Decode yields the generic
// representation (map[string]interface{}, []interface{}, float64...).
type JsonEncoder struct{}

func NewJsonEncoder() Encoder {
	return JsonEncoder{}
}

func (JsonEncoder) Encode(v interface{}) ([]byte, error) {
	byt, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithPrevious(err, `json encode failed`)
	}

	return byt, nil
}

func (JsonEncoder) Decode(data []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.WithPrevious(err, `json decode failed`)
	}

	return v, nil
}
