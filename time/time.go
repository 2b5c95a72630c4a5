// SPDX-License-Identifier: quiltery License 1.0

package time

import (
	"context"
	"strconv"
	stdlibtime "time"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

func Now() *Time {
	now := stdlibtime.Now().UTC()

	return &Time{
		Time: &now,
	}
}

func New(time stdlibtime.Time) *Time {
	utc := time.UTC()

	return &Time{
		Time: &utc,
	}
}

func (t *Time) Scan(src any) error {
	switch val := src.(type) {
	case nil:
		return nil
	case stdlibtime.Time:
		t.Time = new(stdlibtime.Time)
		*t.Time = val.UTC()

		return nil
	case string:
		return t.unmarshallString([]byte(`"` + val + `"`))
	default:
		return errors.Errorf("unsupported source type %T for time", src)
	}
}

func (t *Time) DecodeMsgpack(dec *msgpack.Decoder) error {
	nanoSecs, err := dec.DecodeUint64()
	if err != nil {
		return errors.Wrap(err, "failed to Time.DecodeMsgpack.DecodeUint64")
	}
	t.Time = new(stdlibtime.Time)
	*t.Time = stdlibtime.Unix(0, int64(nanoSecs)).UTC()

	return nil
}

func (t *Time) EncodeMsgpack(enc *msgpack.Encoder) error {
	var nanos uint64
	if t.Location() != stdlibtime.UTC {
		nanos = uint64(t.UTC().UnixNano())
	} else {
		nanos = uint64(t.UnixNano())
	}

	return errors.Wrap(enc.EncodeUint64(nanos), "failed to EncodeUint64")
}

func (t *Time) MarshalJSON(_ context.Context) ([]byte, error) {
	if t.Time == nil || t.UnixNano() == 0 {
		return []byte("null"), nil
	}
	if t.Location() != stdlibtime.UTC {
		*t.Time = t.Time.UTC()
	}

	//nolint:wrapcheck // We're just proxying it.
	return t.Time.MarshalJSON()
}

func (t *Time) UnmarshalJSON(_ context.Context, bytes []byte) (err error) {
	t.unmarshallUint64(bytes)
	if t.Time != nil {
		return nil
	}

	return t.unmarshallString(bytes)
}

func (t *Time) unmarshallUint64(data []byte) {
	if len(data) == 0 {
		return
	}
	for _, b := range data {
		if b < '0' || b > '9' {
			return
		}
	}
	millisOrNanos, err := strconv.Atoi(string(data))
	if err != nil {
		return
	}
	t.Time = new(stdlibtime.Time)
	if len(data) == 13 { //nolint:mnd // There are 13 digits in a millisecond based timestamp.
		*t.Time = stdlibtime.UnixMilli(int64(millisOrNanos)).UTC()
	} else {
		*t.Time = stdlibtime.Unix(0, int64(millisOrNanos)).UTC()
	}
}

func (t *Time) unmarshallString(bytes []byte) error {
	data := string(bytes)
	if data == "null" || data == `""` || data == "" {
		return nil
	}
	parsed, err := stdlibtime.Parse(`"`+stdlibtime.RFC3339Nano+`"`, data)
	if err != nil {
		return errors.Wrapf(err, "invalid time format: %v", data)
	}
	t.Time = new(stdlibtime.Time)
	*t.Time = parsed.UTC()

	return nil
}
