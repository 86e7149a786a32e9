package booking

import (
	"encoding/json"
	"fmt"
)

// AttributeType is the store's native type tag for an attribute.
type AttributeType string

const (
	AttributeString AttributeType = "S"
	AttributeNumber AttributeType = "N"
)

// AttributeValue is a single typed store attribute. Numbers are carried as decimal text.
type AttributeValue struct {
	Type  AttributeType
	Value string
}

// StringAttr builds an S attribute.
func StringAttr(s string) AttributeValue {
	return AttributeValue{Type: AttributeString, Value: s}
}

// NumberAttr builds an N attribute from decimal text.
func NumberAttr(n string) AttributeValue {
	return AttributeValue{Type: AttributeNumber, Value: n}
}

// MarshalJSON encodes the attribute in tagged form, e.g. {"N":"12.5"}.
func (attr AttributeValue) MarshalJSON() ([]byte, error) {
	switch attr.Type {
	case AttributeString, AttributeNumber:
		return json.Marshal(map[string]string{string(attr.Type): attr.Value})
	default:
		return nil, fmt.Errorf("unknown attribute type %q", attr.Type)
	}
}

// Item is a full store record keyed by attribute name.
type Item map[string]AttributeValue

// Key returns the primary key attribute of the item.
func (item Item) Key() string {
	return item[FieldID].Value
}

// MessageAttribute is a typed notification attribute used by subscribers for filtering.
// Kind is the declared kind of the source field, so transports that type their headers
// pick one type per field whatever the value.
type MessageAttribute struct {
	DataType    string `json:"DataType"`
	StringValue string `json:"StringValue"`
	Kind        Kind   `json:"-"`
}

// DataTypeNumber marks a numeric message attribute.
const DataTypeNumber = "Number"

// Notification is the message published after a booking is stored.
type Notification struct {
	BookingID  string
	Body       []byte
	Attributes map[string]MessageAttribute
}
