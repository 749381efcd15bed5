package decoder

import (
	"reflect"
	"time"

	"github.com/vinicius-lino-figueiredo/mongorm/domain"
)

var timeType = reflect.TypeOf(time.Time{})

// stringToTime parses date and datetime strings into [time.Time] fields. The
// layout is chosen by length.
func stringToTime(_ reflect.Type, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || to != timeType {
		return data, nil
	}
	if s == "" {
		return time.Time{}, nil
	}
	layout := domain.DateTimeLayout
	if len(s) == len(domain.DateLayout) {
		layout = domain.DateLayout
	}
	return time.ParseInLocation(layout, s, time.Local)
}
