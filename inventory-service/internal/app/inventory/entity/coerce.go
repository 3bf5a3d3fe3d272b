package entity

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// CoerceNumber converts a stored numeric field to float64.
// Missing, null, non-numeric and non-finite values become 0.
func CoerceNumber(v bson.RawValue) float64 {
	switch v.Type {
	case bsontype.Int32:
		return float64(v.Int32())
	case bsontype.Int64:
		return float64(v.Int64())
	case bsontype.Double:
		return finite(v.Double())
	case bsontype.Decimal128:
		d, err := decimal.NewFromString(v.Decimal128().String())
		if err != nil {
			return 0
		}
		return finite(d.InexactFloat64())
	case bsontype.String:
		d, err := decimal.NewFromString(strings.TrimSpace(v.StringValue()))
		if err != nil {
			return 0
		}
		return finite(d.InexactFloat64())
	case bsontype.Boolean:
		if v.Boolean() {
			return 1
		}
		return 0
	}
	return 0
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// numericProductFields are coerced on decode; legacy documents hold strings there.
var numericProductFields = map[string]bool{
	"inventory": true,
	"price":     true,
	"oldPrice":  true,
}

// productDocument has Product's fields without its UnmarshalBSON method.
type productDocument Product

// UnmarshalBSON decodes a product, coercing inventory, price and oldPrice
// with CoerceNumber so a malformed value never fails the whole document.
func (p *Product) UnmarshalBSON(data []byte) error {
	elements, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}

	doc := make(bson.D, 0, len(elements))
	for _, element := range elements {
		key := element.Key()
		if !numericProductFields[key] {
			doc = append(doc, bson.E{Key: key, Value: element.Value()})
			continue
		}

		n := CoerceNumber(element.Value())
		if key == "inventory" {
			doc = append(doc, bson.E{Key: key, Value: int64(math.Round(n))})
		} else {
			doc = append(doc, bson.E{Key: key, Value: n})
		}
	}

	normalized, err := bson.Marshal(doc)
	if err != nil {
		return err
	}

	var decoded productDocument
	if err := bson.Unmarshal(normalized, &decoded); err != nil {
		return err
	}
	*p = Product(decoded)
	return nil
}
