package source

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/paddle-league/internal/domain/cycle"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type record interface {
	MatchRecord | PlayerRecord | ScheduleRecord
}

// Decoded holds the records that passed decoding and validation together with the
// original position of each one in the file.
type Decoded[T record] struct {
	Records []T
	Indexes []int
	Errors  []cycle.RecordError
}

// Decode reads a JSON array and quarantines entries that fail decoding or validation.
// Only a payload that is not an array at all is returned as an error.
func Decode[T record](league string, kind cycle.Kind, data []byte) (Decoded[T], error) {
	var items []json.RawMessage
	if err := sonic.Unmarshal(data, &items); err != nil {
		return Decoded[T]{}, fmt.Errorf("decode %s array: %w", kind, err)
	}

	out := Decoded[T]{
		Records: make([]T, 0, len(items)),
		Indexes: make([]int, 0, len(items)),
	}
	for idx, raw := range items {
		var item T
		if err := sonic.Unmarshal(raw, &item); err != nil {
			out.Errors = append(out.Errors, cycle.RecordError{League: league, Kind: kind, Index: idx, Reason: "decode: " + err.Error()})
			continue
		}

		normalizeRecord(&item)
		if err := recordValidator().Struct(&item); err != nil {
			out.Errors = append(out.Errors, cycle.RecordError{League: league, Kind: kind, Index: idx, Reason: validationReason(err)})
			continue
		}

		out.Records = append(out.Records, item)
		out.Indexes = append(out.Indexes, idx)
	}

	return out, nil
}

func normalizeRecord(item any) {
	switch v := item.(type) {
	case *MatchRecord:
		v.normalize()
	case *PlayerRecord:
		v.normalize()
	case *ScheduleRecord:
		v.normalize()
	}
}

func validationReason(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return "validate: " + err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return "validate: " + strings.Join(parts, "; ")
}
