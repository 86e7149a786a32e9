package booking

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// Record is a validated booking request stamped with a generated id.
type Record struct {
	ID       string
	From     string
	To       string
	Customer string
	Duration int64
	Distance int64
	Fare     float64

	// request as received plus the id, published verbatim
	raw Request
}

// NewRecord validates req and stamps it with id. A caller-supplied id is overwritten.
func NewRecord(req Request, id string) (*Record, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	raw := maps.Clone(req)
	raw[FieldID] = id

	rec := &Record{
		ID:       id,
		From:     req[FieldFrom].(string),
		To:       req[FieldTo].(string),
		Customer: req[FieldCustomer].(string),
		raw:      raw,
	}

	var err error
	if rec.Duration, err = req[FieldDuration].(json.Number).Int64(); err != nil {
		return nil, fmt.Errorf("duration: %w", err)
	}
	if rec.Distance, err = req[FieldDistance].(json.Number).Int64(); err != nil {
		return nil, fmt.Errorf("distance: %w", err)
	}
	if rec.Fare, err = req[FieldFare].(json.Number).Float64(); err != nil {
		return nil, fmt.Errorf("fare: %w", err)
	}

	return rec, nil
}

// Item maps the record onto typed store attributes.
func (rec *Record) Item() Item {
	return Item{
		FieldID:       StringAttr(rec.ID),
		FieldFrom:     StringAttr(rec.From),
		FieldTo:       StringAttr(rec.To),
		FieldDuration: NumberAttr(formatInt(rec.Duration)),
		FieldDistance: NumberAttr(formatInt(rec.Distance)),
		FieldCustomer: StringAttr(rec.Customer),
		FieldFare:     NumberAttr(formatFloat(rec.Fare)),
	}
}

// Notification serializes the full id-stamped request, extra keys included,
// and attaches fare and distance as numeric attributes.
func (rec *Record) Notification() (Notification, error) {
	body, err := json.Marshal(rec.raw)
	if err != nil {
		return Notification{}, fmt.Errorf("marshal booking notification: %w", err)
	}

	return Notification{
		BookingID: rec.ID,
		Body:      body,
		Attributes: map[string]MessageAttribute{
			FieldFare:     {DataType: DataTypeNumber, StringValue: formatFloat(rec.Fare), Kind: KindFloat},
			FieldDistance: {DataType: DataTypeNumber, StringValue: formatInt(rec.Distance), Kind: KindInteger},
		},
	}, nil
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
