package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type priced struct {
	CPM    decimal.Decimal `bson:"cpm"`
	Budget decimal.Decimal `bson:"budget"`
}

func TestDecimalCodec(t *testing.T) {
	reg := Registry()
	in := priced{CPM: decimal.RequireFromString("2.50"), Budget: decimal.RequireFromString("1000.125")}

	raw, err := bson.MarshalWithRegistry(reg, in)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	require.Equal(t, "2.5", doc["cpm"])

	var out priced
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &out))
	require.True(t, in.CPM.Equal(out.CPM))
	require.True(t, in.Budget.Equal(out.Budget))
}

func TestDecimalCodec_NumericLegacyValues(t *testing.T) {
	reg := Registry()
	raw, err := bson.Marshal(bson.M{"cpm": 3.5, "budget": int32(10)})
	require.NoError(t, err)
	var out priced
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &out))
	require.Equal(t, "3.5", out.CPM.String())
	require.Equal(t, "10", out.Budget.String())
}
