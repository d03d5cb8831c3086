package client

import (
	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave"
	"github.com/pkg/errors"
)

// JarResponse is a jar together with its ID.
type JarResponse struct {
	ID     []byte
	Jar    tipjar.Jar
	Height int64
}

// GetJar returns the jar with given ID or nil if it does not exist.
func (c *TipjarClient) GetJar(jarID []byte) (*JarResponse, error) {
	out := JarResponse{ID: jarID}
	height, ok, err := c.queryOne("/tipjars", jarID, &out.Jar)
	if err != nil || !ok {
		return nil, err
	}
	out.Height = height
	return &out, nil
}

// JarsOf returns all jars administered by given address.
func (c *TipjarClient) JarsOf(admin weave.Address) ([]JarResponse, error) {
	resp, err := c.Query("/tipjars/admin", admin)
	if err != nil {
		return nil, err
	}
	jars := make([]JarResponse, len(resp.Models))
	for i, m := range resp.Models {
		// Keys carry the bucket prefix.
		jars[i].ID = m.Key[len("tipjar:"):]
		jars[i].Height = resp.Height
		if err := jars[i].Jar.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrapf(err, "cannot unmarshal jar %X", m.Key)
		}
	}
	return jars, nil
}

// BalanceOf returns how much the depositor tipped into the jar since the last
// withdraw. Nil is returned when nothing was tipped.
func (c *TipjarClient) BalanceOf(jarID []byte, depositor weave.Address) (*tipjar.Balance, error) {
	if err := depositor.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid address")
	}
	var b tipjar.Balance
	_, ok, err := c.queryOne("/tipbalances", tipjar.BalanceKey(jarID, depositor), &b)
	if err != nil || !ok {
		return nil, err
	}
	return &b, nil
}

// Events returns the audit log of the jar, oldest first.
func (c *TipjarClient) Events(jarID []byte) ([]*tipjar.Event, error) {
	resp, err := c.Query("/tipevents/jar", jarID)
	if err != nil {
		return nil, err
	}
	events := make([]*tipjar.Event, len(resp.Models))
	for i, m := range resp.Models {
		events[i] = new(tipjar.Event)
		if err := events[i].Unmarshal(m.Value); err != nil {
			return nil, errors.Wrapf(err, "cannot unmarshal event %X", m.Key)
		}
	}
	return events, nil
}
