package cyclic

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tryfix/unbounded/encoding"
	"github.com/tryfix/unbounded/source"
)

type mark struct{}

func (mark) FinalizeCheckpoint() error { return nil }

func newSource(t *testing.T, opts ...Option) *Source {
	src, err := NewSource(encoding.StringEncoder{}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

func startedReader(t *testing.T, src *Source) source.Reader {
	r, err := src.NewReader(nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := r.Start()
	if err != nil {
		t.Fatal(err)
	}

	if !ok {
		t.Fatal(`expected a current record after start`)
	}

	return r
}

func TestNewSource_Empty_Records(t *testing.T) {
	tests := []struct {
		name    string
		records []string
	}{
		{name: `nil`, records: nil},
		{name: `empty`, records: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(encoding.StringEncoder{}, WithRecords(tt.records))
			if !errors.Is(err, source.ErrInvalidConfiguration) {
				t.Errorf("NewSource() error = %v, want %v", err, source.ErrInvalidConfiguration)
			}

			if src != nil {
				t.Error(`source should not be created`)
			}

			if err != nil && !strings.Contains(err.Error(), `cannot be empty`) {
				t.Errorf(`error should name the empty record set, got %s`, err)
			}
		})
	}
}

func TestNewSource_Nil_Encoder(t *testing.T) {
	if _, err := NewSource(nil); !errors.Is(err, source.ErrInvalidConfiguration) {
		t.Errorf("NewSource() error = %v, want %v", err, source.ErrInvalidConfiguration)
	}
}

func TestNewSource_Nil_Dependencies(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: `clock`, opt: WithClock(nil)},
		{name: `logger`, opt: WithLogger(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(encoding.StringEncoder{}, tt.opt)
			if !errors.Is(err, source.ErrInvalidConfiguration) {
				t.Errorf("NewSource() error = %v, want %v", err, source.ErrInvalidConfiguration)
			}

			if src != nil {
				t.Error(`source should not be created`)
			}
		})
	}
}

func TestNewSource_Copies_Records(t *testing.T) {
	records := []string{`a`, `b`}
	src := newSource(t, WithRecords(records))
	records[0] = `z`

	r := startedReader(t, src)
	v, err := r.Current()
	if err != nil {
		t.Fatal(err)
	}

	if v != `a` {
		t.Errorf(`source mutated after construction, got %v`, v)
	}
}

func TestSource_Split(t *testing.T) {
	src := newSource(t)
	for _, n := range []int{-1, 0, 1, 2, 10, 1000} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			splits, err := src.Split(n, source.Options{`foo`: `bar`})
			if err != nil {
				t.Fatal(err)
			}

			if len(splits) != 1 {
				t.Fatalf(`expected one split, got %d`, len(splits))
			}

			if splits[0] != source.Source(src) {
				t.Error(`split should be the source itself`)
			}
		})
	}
}

func TestSource_CheckpointMarkEncoder(t *testing.T) {
	if newSource(t).CheckpointMarkEncoder() != nil {
		t.Fail()
	}
}

func TestSource_Validate(t *testing.T) {
	if err := newSource(t).Validate(); err != nil {
		t.Error(err)
	}
}

func TestSource_OutputEncoder(t *testing.T) {
	enc := encoding.StringEncoder{}
	src, err := NewSource(enc)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(src.OutputEncoder(), enc) {
		t.Errorf(`unexpected encoder %#v`, src.OutputEncoder())
	}
}

func TestReader_Sentences(t *testing.T) {
	r := startedReader(t, newSource(t))

	want := []string{`blah blah blah`, `foo bar`, `my dog has fleas`, `blah blah blah`, `foo bar`}
	var got []string
	for i := range want {
		if i > 0 {
			ok, err := r.Advance()
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatal(`advance reported end of stream`)
			}
		}

		v, err := r.Current()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v.(string))
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("records = %v, want %v", got, want)
	}
}

func TestReader_Cycles(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			records := make([]string, n)
			for i := range records {
				records[i] = fmt.Sprintf(`record-%d`, i)
			}

			r := startedReader(t, newSource(t, WithRecords(records)))
			for k := 0; k < 3*n+1; k++ {
				v, err := r.Current()
				if err != nil {
					t.Fatal(err)
				}

				if v != records[k%n] {
					t.Errorf(`after %d advances got %v, want %v`, k, v, records[k%n])
				}

				if pos := r.(*reader).Position(); pos != k%n {
					t.Errorf(`after %d advances position %d, want %d`, k, pos, k%n)
				}

				ok, err := r.Advance()
				if err != nil || !ok {
					t.Fatalf(`advance = %v, %v`, ok, err)
				}
			}
		})
	}
}

func TestReader_Ignores_Checkpoint(t *testing.T) {
	src := newSource(t)
	r, err := src.NewReader(source.Options{}, mark{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Start(); err != nil {
		t.Fatal(err)
	}

	v, err := r.Current()
	if err != nil {
		t.Fatal(err)
	}

	if v != Sentences[0] {
		t.Errorf(`got %v, want %v`, v, Sentences[0])
	}
}

func TestReader_Checkpoint_Always_Nil(t *testing.T) {
	r, err := newSource(t).NewReader(nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if r.Checkpoint() != nil {
		t.Error(`unstarted reader returned a checkpoint`)
	}

	if _, err := r.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Advance(); err != nil {
		t.Fatal(err)
	}

	if r.Checkpoint() != nil {
		t.Error(`active reader returned a checkpoint`)
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	if r.Checkpoint() != nil {
		t.Error(`closed reader returned a checkpoint`)
	}
}

func TestReader_Clock(t *testing.T) {
	ts := time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)
	r := startedReader(t, newSource(t, WithClock(source.FixedClock(ts))))

	got, err := r.CurrentTimestamp()
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(ts) {
		t.Errorf(`timestamp = %v, want %v`, got, ts)
	}

	wm, err := r.Watermark()
	if err != nil {
		t.Fatal(err)
	}
	if !wm.Equal(ts) {
		t.Errorf(`watermark = %v, want %v`, wm, ts)
	}
}

func TestReader_Illegal_State(t *testing.T) {
	calls := map[string]func(r source.Reader) error{
		`current`: func(r source.Reader) error {
			_, err := r.Current()
			return err
		},
		`timestamp`: func(r source.Reader) error {
			_, err := r.CurrentTimestamp()
			return err
		},
		`watermark`: func(r source.Reader) error {
			_, err := r.Watermark()
			return err
		},
		`advance`: func(r source.Reader) error {
			_, err := r.Advance()
			return err
		},
	}

	for name, call := range calls {
		t.Run(name+`_before_start`, func(t *testing.T) {
			r, err := newSource(t).NewReader(nil, nil)
			if err != nil {
				t.Fatal(err)
			}

			if err := call(r); !errors.Is(err, source.ErrIllegalState) {
				t.Errorf(`error = %v, want %v`, err, source.ErrIllegalState)
			}
		})

		t.Run(name+`_after_close`, func(t *testing.T) {
			r := startedReader(t, newSource(t))
			if err := r.Close(); err != nil {
				t.Fatal(err)
			}

			if err := call(r); !errors.Is(err, source.ErrIllegalState) {
				t.Errorf(`error = %v, want %v`, err, source.ErrIllegalState)
			}
		})
	}
}

func TestReader_Start_Twice(t *testing.T) {
	r := startedReader(t, newSource(t))
	if _, err := r.Start(); !errors.Is(err, source.ErrIllegalState) {
		t.Errorf(`error = %v, want %v`, err, source.ErrIllegalState)
	}
}

func TestReader_Close_Idempotent(t *testing.T) {
	r, err := newSource(t).NewReader(nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := r.Close(); err != nil {
			t.Error(err)
		}
	}

	if _, err := r.Start(); !errors.Is(err, source.ErrIllegalState) {
		t.Errorf(`start after close error = %v`, err)
	}
}

func TestReader_CurrentSource(t *testing.T) {
	src := newSource(t)
	r, err := src.NewReader(nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if r.CurrentSource() != source.Source(src) {
		t.Fail()
	}
}

func TestReaders_Are_Independent(t *testing.T) {
	src := newSource(t)
	r1 := startedReader(t, src)
	r2 := startedReader(t, src)

	if _, err := r1.Advance(); err != nil {
		t.Fatal(err)
	}

	v1, _ := r1.Current()
	v2, _ := r2.Current()
	if v1 != Sentences[1] || v2 != Sentences[0] {
		t.Errorf(`readers share state: %v %v`, v1, v2)
	}
}
