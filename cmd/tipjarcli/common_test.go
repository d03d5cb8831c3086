package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"io"
	"io/ioutil"
	"testing"

	"github.com/iov-one/tipjar/cmd/tipjard/app"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/weavetest/assert"
	"github.com/iov-one/weave/x/cash"
)

func fromHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func mustCreateFile(t testing.TB, r io.Reader) string {
	t.Helper()

	fd, err := ioutil.TempFile("", "tipjarcli")
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()
	if _, err := io.Copy(fd, r); err != nil {
		t.Fatal(err)
	}
	if err := fd.Close(); err != nil {
		t.Fatal(err)
	}
	return fd.Name()
}

func TestUnpackSequence(t *testing.T) {
	cases := map[string]struct {
		Raw     string
		WantErr bool
		Want    []byte
	}{
		"default encoding (decimal)": {
			Raw:  "123",
			Want: sequenceID(123),
		},
		"zero decimal value is not allowed": {
			Raw:     "0",
			WantErr: true,
		},
		"negative decimal value is not allowed": {
			Raw:     "-4",
			WantErr: true,
		},
		"hex encoded value": {
			Raw:  "hex:" + hex.EncodeToString(sequenceID(1234567890)),
			Want: sequenceID(1234567890),
		},
		"too short, hex encoded value": {
			Raw:     "hex:3132330a",
			WantErr: true,
		},
		"too long, hex encoded value": {
			Raw:     "hex:" + hex.EncodeToString([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
			WantErr: true,
		},
		"base64 encoded value": {
			Raw:  "base64:" + base64.StdEncoding.EncodeToString(sequenceID(1234567890)),
			Want: sequenceID(1234567890),
		},
		"too short, base64 encoded value": {
			Raw:     "base64:" + base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
			WantErr: true,
		},
		"unknown encoding (random string)": {
			Raw:     "x:_P1U_!RU)RQU_AU)FAf",
			WantErr: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			b, err := unpackSequence(tc.Raw)

			if tc.WantErr {
				if err == nil {
					t.Fatalf("want error, got %x", b)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				if !bytes.Equal(b, tc.Want) {
					t.Fatalf("unexpected result: %x", b)
				}
			}
		})
	}
}

func TestFromSequence(t *testing.T) {
	n, err := fromSequence(sequenceID(987))
	assert.Nil(t, err)
	assert.Equal(t, uint64(987), n)

	if _, err := fromSequence([]byte{1, 2}); err == nil {
		t.Fatal("want error for a short sequence")
	}
}

func TestTxStream(t *testing.T) {
	first := &app.Tx{
		Sum: &app.Tx_CashSendMsg{
			CashSendMsg: &cash.SendMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Memo:     "first",
			},
		},
	}
	second := &app.Tx{
		Sum: &app.Tx_CashSendMsg{
			CashSendMsg: &cash.SendMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Memo:     "second",
			},
		},
	}

	var buf bytes.Buffer
	n1, err := writeTx(&buf, first)
	assert.Nil(t, err)
	n2, err := writeTx(&buf, second)
	assert.Nil(t, err)
	assert.Equal(t, n1+n2, buf.Len())

	got, n, err := readTx(&buf)
	assert.Nil(t, err)
	assert.Equal(t, n1, n)
	assert.Equal(t, "first", got.GetCashSendMsg().Memo)

	got, _, err = readTx(&buf)
	assert.Nil(t, err)
	assert.Equal(t, "second", got.GetCashSendMsg().Memo)

	if _, _, err := readTx(&buf); err != io.EOF {
		t.Fatalf("want EOF, got %v", err)
	}
}
