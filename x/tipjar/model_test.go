package tipjar

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestModelValidation(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	cases := map[string]struct {
		Model interface{ Validate() error }
		Wants map[string]*errors.Error
	}{
		"valid jar": {
			Model: &Jar{
				Metadata: &weave.Metadata{Schema: 1},
				Admin:    addr,
				Total:    coin.NewCoin(0, 0, "IOV"),
			},
			Wants: map[string]*errors.Error{
				"Metadata": nil,
				"Admin":    nil,
				"Total":    nil,
			},
		},
		"jar without an admin": {
			Model: &Jar{
				Metadata: &weave.Metadata{Schema: 1},
				Total:    coin.NewCoin(1, 0, "IOV"),
			},
			Wants: map[string]*errors.Error{
				"Admin": errors.ErrEmpty,
				"Total": nil,
			},
		},
		"jar with a negative total": {
			Model: &Jar{
				Metadata: &weave.Metadata{Schema: 1},
				Admin:    addr,
				Total:    coin.NewCoin(-1, 0, "IOV"),
			},
			Wants: map[string]*errors.Error{
				"Total": errors.ErrAmount,
			},
		},
		"jar without a currency": {
			Model: &Jar{
				Metadata: &weave.Metadata{Schema: 1},
				Admin:    addr,
			},
			Wants: map[string]*errors.Error{
				"Total": errors.ErrCurrency,
			},
		},
		"valid balance": {
			Model: &Balance{
				Metadata:  &weave.Metadata{Schema: 1},
				JarID:     weavetest.SequenceID(1),
				Depositor: addr,
				Amount:    coin.NewCoin(0, 5, "IOV"),
			},
			Wants: map[string]*errors.Error{
				"Metadata":  nil,
				"JarID":     nil,
				"Depositor": nil,
				"Amount":    nil,
			},
		},
		"zero balance is never stored": {
			Model: &Balance{
				Metadata:  &weave.Metadata{Schema: 1},
				JarID:     weavetest.SequenceID(1),
				Depositor: addr,
				Amount:    coin.NewCoin(0, 0, "IOV"),
			},
			Wants: map[string]*errors.Error{
				"Amount": errors.ErrAmount,
			},
		},
		"balance without a jar": {
			Model: &Balance{
				Metadata:  &weave.Metadata{Schema: 1},
				Depositor: addr,
				Amount:    coin.NewCoin(1, 0, "IOV"),
			},
			Wants: map[string]*errors.Error{
				"JarID":     errors.ErrEmpty,
				"Depositor": nil,
			},
		},
		"valid event": {
			Model: &Event{
				Metadata: &weave.Metadata{Schema: 1},
				JarID:    weavetest.SequenceID(1),
				Kind:     EventWithdraw,
				Actor:    addr,
				Amount:   coin.NewCoin(3, 0, "IOV"),
				Height:   12,
			},
			Wants: map[string]*errors.Error{
				"Metadata": nil,
				"JarID":    nil,
				"Kind":     nil,
				"Actor":    nil,
				"Amount":   nil,
				"Height":   nil,
			},
		},
		"event of an unknown kind": {
			Model: &Event{
				Metadata: &weave.Metadata{Schema: 1},
				JarID:    weavetest.SequenceID(1),
				Kind:     EventKind(42),
				Actor:    addr,
				Amount:   coin.NewCoin(3, 0, "IOV"),
			},
			Wants: map[string]*errors.Error{
				"Kind": errors.ErrInput,
			},
		},
		"event without a kind": {
			Model: &Event{
				Metadata: &weave.Metadata{Schema: 1},
				JarID:    weavetest.SequenceID(1),
				Actor:    addr,
				Amount:   coin.NewCoin(3, 0, "IOV"),
				Height:   -1,
			},
			Wants: map[string]*errors.Error{
				"Kind":   errors.ErrInput,
				"Height": errors.ErrInput,
			},
		},
		"valid configuration": {
			Model: &Configuration{
				Metadata:      &weave.Metadata{Schema: 1},
				Owner:         addr,
				MaxMemoLength: 64,
			},
			Wants: map[string]*errors.Error{
				"Metadata":      nil,
				"Owner":         nil,
				"MaxMemoLength": nil,
			},
		},
		"configuration with a negative memo limit": {
			Model: &Configuration{
				Metadata:      &weave.Metadata{Schema: 1},
				Owner:         addr,
				MaxMemoLength: -1,
			},
			Wants: map[string]*errors.Error{
				"MaxMemoLength": errors.ErrInput,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Model.Validate()
			for field, wantErr := range tc.Wants {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}

func TestBalanceKeyIsUniquePerJar(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	a := BalanceKey(weavetest.SequenceID(1), addr)
	b := BalanceKey(weavetest.SequenceID(2), addr)
	if string(a) == string(b) {
		t.Fatal("balances of different jars share a key")
	}
	if len(a) != 8+len(addr) {
		t.Fatalf("unexpected key length %d", len(a))
	}
}

func TestJarAccountsDiffer(t *testing.T) {
	a := Condition(weavetest.SequenceID(1)).Address()
	b := Condition(weavetest.SequenceID(2)).Address()
	if a.Equals(b) {
		t.Fatal("two jars share an account")
	}
	assert.Nil(t, a.Validate())
}
