package client

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
	"github.com/pkg/errors"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/rpc/client"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// BroadcastTxSyncDefaultTimeOut is how long BroadcastTxSync waits for the
// transaction to be included in a block.
const BroadcastTxSyncDefaultTimeOut = 15 * time.Second

// Client reads the tipjard state and submits transactions.
type Client interface {
	GetUser(addr weave.Address) (*UserResponse, error)
	GetWallet(addr weave.Address) (*WalletResponse, error)
	Query(path string, data []byte) (QueryResponse, error)
	BroadcastTx(tx weave.Tx) BroadcastTxResponse
	BroadcastTxSync(tx weave.Tx, timeout time.Duration) BroadcastTxResponse
}

// TipjarClient talks to a tipjard node over a tendermint connection.
type TipjarClient struct {
	conn client.Client
}

var _ Client = (*TipjarClient)(nil)

// NewClient returns a client using given connection. Use client.NewLocal to
// connect to an in-process node.
func NewClient(conn client.Client) *TipjarClient {
	return &TipjarClient{conn: conn}
}

// Dial returns a client of the node listening on given RPC address.
func Dial(remote string) *TipjarClient {
	return NewClient(client.NewHTTP(remote, "/websocket"))
}

// ChainID returns the chain ID declared in the node genesis.
func (c *TipjarClient) ChainID() (string, error) {
	gen, err := c.conn.Genesis()
	if err != nil {
		return "", errors.Wrap(err, "cannot fetch genesis")
	}
	return gen.Genesis.ChainID, nil
}

// QueryResponse holds the models found by a query together with the height
// of the state they were read from.
type QueryResponse struct {
	Models []weave.Model
	Height int64
}

// Query runs an ABCI query and decodes the result sets.
func (c *TipjarClient) Query(path string, data []byte) (QueryResponse, error) {
	var out QueryResponse
	q, err := c.conn.ABCIQuery(path, data)
	if err != nil {
		return out, err
	}
	if res := q.Response; res.IsErr() {
		return out, errors.Errorf("query %s failed (%d): %s", path, res.Code, res.Log)
	}
	out.Height = q.Response.Height
	if len(q.Response.Key) == 0 {
		return out, nil
	}

	var keys, vals app.ResultSet
	if err := keys.Unmarshal(q.Response.Key); err != nil {
		return out, errors.Wrap(err, "cannot unmarshal keys")
	}
	if err := vals.Unmarshal(q.Response.Value); err != nil {
		return out, errors.Wrap(err, "cannot unmarshal values")
	}
	out.Models, err = app.JoinResults(&keys, &vals)
	return out, err
}

type unmarshaler interface {
	Unmarshal([]byte) error
}

// queryOne loads the model stored under key into dest. It returns false when
// nothing is stored.
func (c *TipjarClient) queryOne(path string, key []byte, dest unmarshaler) (int64, bool, error) {
	resp, err := c.Query(path, key)
	if err != nil {
		return 0, false, err
	}
	if len(resp.Models) == 0 {
		return resp.Height, false, nil
	}
	if err := dest.Unmarshal(resp.Models[0].Value); err != nil {
		return 0, false, errors.Wrapf(err, "cannot unmarshal %s result", path)
	}
	return resp.Height, true, nil
}

// WalletResponse is the cash wallet of an address.
type WalletResponse struct {
	Address weave.Address
	Wallet  cash.Set
	Height  int64
}

// GetWallet returns the wallet of the address, or nil if it holds nothing.
func (c *TipjarClient) GetWallet(addr weave.Address) (*WalletResponse, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid address")
	}
	out := WalletResponse{Address: addr}
	height, ok, err := c.queryOne("/wallets", addr, &out.Wallet)
	if err != nil || !ok {
		return nil, err
	}
	out.Height = height
	return &out, nil
}

// UserResponse is the signing state of an address.
type UserResponse struct {
	Address  weave.Address
	UserData sigs.UserData
	Height   int64
}

// GetUser returns the sequence and public key registered for the address.
// Nil is returned for an address that never signed a transaction.
func (c *TipjarClient) GetUser(addr weave.Address) (*UserResponse, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid address")
	}
	out := UserResponse{Address: addr}
	height, ok, err := c.queryOne("/auth", addr, &out.UserData)
	if err != nil || !ok {
		return nil, err
	}
	out.Height = height
	return &out, nil
}

// BroadcastTxResponse is the result of submitting a transaction.
type BroadcastTxResponse struct {
	// Error is set when the transaction could not be sent.
	Error error
	// Response is set when the node processed the transaction.
	Response *ctypes.ResultBroadcastTxCommit
}

// IsError returns why the transaction failed or nil if it was delivered.
func (b BroadcastTxResponse) IsError() error {
	switch {
	case b.Error != nil:
		return b.Error
	case b.Response.CheckTx.IsErr():
		return errors.Errorf("CheckTx error: (%d) %s", b.Response.CheckTx.Code, b.Response.CheckTx.Log)
	case b.Response.DeliverTx.IsErr():
		return errors.Errorf("DeliverTx error: (%d) %s", b.Response.DeliverTx.Code, b.Response.DeliverTx.Log)
	}
	return nil
}

// BroadcastTx submits the transaction and returns once it is committed.
func (c *TipjarClient) BroadcastTx(tx weave.Tx) BroadcastTxResponse {
	data, err := tx.Marshal()
	if err != nil {
		return BroadcastTxResponse{Error: err}
	}
	res, err := c.conn.BroadcastTxCommit(data)
	return BroadcastTxResponse{Error: err, Response: res}
}

// BroadcastTxSync submits the transaction and waits until it is included in
// a block or the timeout passes.
func (c *TipjarClient) BroadcastTxSync(tx weave.Tx, timeout time.Duration) BroadcastTxResponse {
	data, err := tx.Marshal()
	if err != nil {
		return BroadcastTxResponse{Error: err}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Subscribe first so that the block event cannot be missed.
	subscriber := hex.EncodeToString(append(tmtypes.Tx(data).Hash(), cmn.RandBytes(2)...))
	events, err := c.conn.Subscribe(ctx, subscriber, tmtypes.EventQueryTxFor(data).String())
	if err != nil {
		return BroadcastTxResponse{Error: errors.Wrap(err, "cannot subscribe")}
	}
	defer c.conn.UnsubscribeAll(ctx, subscriber)

	res, err := c.conn.BroadcastTxSync(data)
	if err != nil {
		return BroadcastTxResponse{Error: err}
	}
	if res.Code != 0 {
		return BroadcastTxResponse{Error: errors.Errorf("CheckTx error: (%d) %s", res.Code, res.Log)}
	}

	select {
	case evt := <-events:
		txe, ok := evt.Data.(tmtypes.EventDataTx)
		if !ok {
			return BroadcastTxResponse{Error: errors.Errorf("unexpected event type %T", evt.Data)}
		}
		return BroadcastTxResponse{
			Response: &ctypes.ResultBroadcastTxCommit{
				DeliverTx: txe.Result,
				Height:    txe.Height,
				Hash:      txe.Tx.Hash(),
			},
		}
	case <-ctx.Done():
		return BroadcastTxResponse{Error: errors.New("timed out waiting for the transaction")}
	}
}

// Nonce hands out the sequence numbers of an address. The chain is queried
// only once, later values are counted locally.
type Nonce struct {
	mu     sync.Mutex
	client Client
	addr   weave.Address
	next   int64
	synced bool
}

// NewNonce returns the sequence counter of the address.
func NewNonce(client Client, addr weave.Address) *Nonce {
	return &Nonce{client: client, addr: addr}
}

// Query reads the current sequence from the chain. The next call to Next
// returns it.
func (n *Nonce) Query() (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sync()
}

func (n *Nonce) sync() (int64, error) {
	user, err := n.client.GetUser(n.addr)
	if err != nil {
		return 0, err
	}
	n.next = 0
	if user != nil {
		n.next = user.UserData.Sequence
	}
	n.synced = true
	return n.next, nil
}

// Next returns the sequence for the next transaction signed by the address.
// Every value is returned once.
func (n *Nonce) Next() (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.synced {
		if _, err := n.sync(); err != nil {
			return 0, err
		}
	}
	seq := n.next
	n.next++
	return seq, nil
}
