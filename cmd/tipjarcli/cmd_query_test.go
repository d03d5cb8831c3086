package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestBalanceKeyRoundTrip(t *testing.T) {
	addr := weave.Address(fromHex(t, "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"))

	id, err := balanceID("3/" + addr.String())
	assert.Nil(t, err)
	assert.Equal(t, tipjar.BalanceKey(sequenceID(3), addr), id)

	got, err := balanceKey(append([]byte("tipbal:"), id...))
	assert.Nil(t, err)
	assert.Equal(t, "3/"+addr.String(), got)

	if _, err := balanceID("3"); err == nil {
		t.Fatal("want an error when the address is missing")
	}
}

func TestPrintModels(t *testing.T) {
	jar := tipjar.Jar{
		Metadata: &weave.Metadata{Schema: 1},
		Admin:    fromHex(t, "E28AE9A6EB94FC88B73EB7CBD6B87BF93EB9BEF0"),
		Total:    coin.NewCoin(7, 0, "IOV"),
	}
	raw, err := jar.Marshal()
	assert.Nil(t, err)

	models := []weave.Model{
		{Key: append([]byte("tipjar:"), sequenceID(9)...), Value: raw},
	}
	conf := queries["/tipjars"]

	var output bytes.Buffer
	assert.Nil(t, printModels(&output, conf.newObj, conf.decKey, models))

	var got []struct {
		Key   string
		Value json.RawMessage
	}
	assert.Nil(t, json.Unmarshal(output.Bytes(), &got))
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "9", got[0].Key)
}
