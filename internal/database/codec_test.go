package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type pricedDoc struct {
	Price    decimal.Decimal  `bson:"price"`
	OldPrice *decimal.Decimal `bson:"oldPrice,omitempty"`
}

func TestDecimalCodecRoundTrip(t *testing.T) {
	reg := NewRegistry()
	old := decimal.RequireFromString("24.90")
	in := pricedDoc{Price: decimal.RequireFromString("19.90"), OldPrice: &old}

	raw, err := bson.MarshalWithRegistry(reg, in)
	require.NoError(t, err)

	assert.Equal(t, bsontype.Decimal128, bson.Raw(raw).Lookup("price").Type)

	var out pricedDoc
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &out))
	assert.True(t, in.Price.Equal(out.Price))
	require.NotNil(t, out.OldPrice)
	assert.True(t, old.Equal(*out.OldPrice))
}

func TestDecimalCodecReadsLegacyNumbers(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		doc  bson.M
		want string
	}{
		{name: "double", doc: bson.M{"price": 12.5}, want: "12.5"},
		{name: "int32", doc: bson.M{"price": int32(7)}, want: "7"},
		{name: "int64", doc: bson.M{"price": int64(30)}, want: "30"},
		{name: "string", doc: bson.M{"price": "3.75"}, want: "3.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.doc)
			require.NoError(t, err)

			var out pricedDoc
			require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &out))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(out.Price), out.Price.String())
		})
	}
}

func TestDecimalCodecRejectsBoolean(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"price": true})
	require.NoError(t, err)

	var out pricedDoc
	assert.Error(t, bson.UnmarshalWithRegistry(NewRegistry(), raw, &out))
}
