package rpcledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

const (
	methodExecuteTransaction = "sui_executeTransactionBlock"
	methodReferenceGasPrice  = "suix_getReferenceGasPrice"
	methodGetCoins           = "suix_getCoins"
	methodGetObject          = "sui_getObject"
	waitForLocalExecution    = "WaitForLocalExecution"
	gasCoinType              = "0x2::sui::SUI"
	coinPageSize             = 50
	maxCoinPages             = 20

	maxResponseBytes = 16 << 20
)

var (
	ErrEmptyResult    = errors.New("ledger returned an empty result")
	ErrObjectNotFound = errors.New("object not found")
)

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// Client submits transactions to a fullnode over JSON-RPC 2.0.
type Client struct {
	url        string
	httpClient *http.Client
	nextID     atomic.Uint64
}

func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:        strings.TrimSpace(url),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URL() string {
	return c.url
}

type executeOptions struct {
	ShowEffects       bool `json:"showEffects"`
	ShowObjectChanges bool `json:"showObjectChanges"`
}

// Execute submits signed transaction bytes and waits until the node has
// executed them locally. A transaction that executed but failed is not an
// error here; callers inspect the returned status.
func (c *Client) Execute(ctx context.Context, req domain.ExecuteRequest) (domain.TransactionResponse, error) {
	params := []any{
		base64.StdEncoding.EncodeToString(req.TxBytes),
		req.Signatures,
		executeOptions{ShowEffects: true, ShowObjectChanges: true},
		waitForLocalExecution,
	}

	var resp domain.TransactionResponse
	if err := c.call(ctx, methodExecuteTransaction, params, &resp); err != nil {
		return domain.TransactionResponse{}, err
	}
	if resp.Digest == "" && resp.Effects == nil {
		return domain.TransactionResponse{}, ErrEmptyResult
	}
	return resp, nil
}

// ReferenceGasPrice returns the gas price of the current epoch.
func (c *Client) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	var raw jsontext.Value
	if err := c.call(ctx, methodReferenceGasPrice, []any{}, &raw); err != nil {
		return 0, err
	}
	price, err := parseUint(strings.Trim(string(raw), `"`))
	if err != nil {
		return 0, fmt.Errorf("decode %s result: %w", methodReferenceGasPrice, err)
	}
	return price, nil
}

type coinPage struct {
	Data []struct {
		CoinObjectID string `json:"coinObjectId"`
		Version      string `json:"version"`
		Digest       string `json:"digest"`
		Balance      string `json:"balance"`
	} `json:"data"`
	NextCursor  *string `json:"nextCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// GasCoins lists the SUI coins owned by owner.
func (c *Client) GasCoins(ctx context.Context, owner string) ([]domain.Coin, error) {
	var coins []domain.Coin
	var cursor *string
	for page := 0; page < maxCoinPages; page++ {
		var resp coinPage
		if err := c.call(ctx, methodGetCoins, []any{owner, gasCoinType, cursor, coinPageSize}, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Data {
			version, err := parseUint(item.Version)
			if err != nil {
				return nil, fmt.Errorf("coin %s version: %w", item.CoinObjectID, err)
			}
			balance, err := parseUint(item.Balance)
			if err != nil {
				return nil, fmt.Errorf("coin %s balance: %w", item.CoinObjectID, err)
			}
			coins = append(coins, domain.Coin{
				Ref:     domain.ObjectRef{ObjectID: item.CoinObjectID, Version: version, Digest: item.Digest},
				Balance: balance,
			})
		}
		if !resp.HasNextPage || resp.NextCursor == nil {
			break
		}
		cursor = resp.NextCursor
	}
	return coins, nil
}

type objectResponse struct {
	Data *struct {
		ObjectID string `json:"objectId"`
		Version  string `json:"version"`
		Digest   string `json:"digest"`
	} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// ObjectRef returns the current version and digest of an object.
func (c *Client) ObjectRef(ctx context.Context, objectID string) (domain.ObjectRef, error) {
	var resp objectResponse
	if err := c.call(ctx, methodGetObject, []any{objectID, map[string]bool{}}, &resp); err != nil {
		return domain.ObjectRef{}, err
	}
	if resp.Data == nil {
		code := "missing data"
		if resp.Error != nil {
			code = resp.Error.Code
		}
		return domain.ObjectRef{}, fmt.Errorf("%w: %s (%s)", ErrObjectNotFound, objectID, code)
	}
	version, err := parseUint(resp.Data.Version)
	if err != nil {
		return domain.ObjectRef{}, fmt.Errorf("object %s version: %w", objectID, err)
	}
	return domain.ObjectRef{ObjectID: resp.Data.ObjectID, Version: version, Digest: resp.Data.Digest}, nil
}

func parseUint(value string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(value), 10, 64)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      uint64         `json:"id"`
	Result  jsontext.Value `json:"result"`
	Error   *RPCError      `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	if c.url == "" {
		return errors.New("rpc url is required")
	}

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: http %d: %s", method, httpResp.StatusCode, strings.TrimSpace(string(data)))
	}

	var decoded response
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if decoded.Error != nil {
		return decoded.Error
	}
	if len(decoded.Result) == 0 || string(decoded.Result) == "null" {
		return ErrEmptyResult
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
