package restclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/ciricc/btc-address-indexer/internal/pkg/universalbitcioin/blockchain"
	"golang.org/x/time/rate"
)

// MaxOutpointsPerRequest is the getutxos limit of Bitcoin Core.
const MaxOutpointsPerRequest = 15

type RESTClientOptions struct {
	RequestTimeout time.Duration

	// RequestsPerSecond limits outgoing requests, zero disables the limit
	RequestsPerSecond float64

	// Transport is used for HTTP requests, http.DefaultTransport by default
	Transport http.RoundTripper
}

type RESTClient struct {
	nodeRestURL *url.URL
	c           *http.Client
	limiter     *rate.Limiter
}

func New(nodeRestURL *url.URL, opts *RESTClientOptions) (*RESTClient, error) {
	if nodeRestURL == nil {
		return nil, ErrNodeHostNotSpecified
	}

	defaultOptions := &RESTClientOptions{
		RequestTimeout: 10 * time.Second,
		Transport:      http.DefaultTransport,
	}

	if opts != nil {
		if opts.RequestTimeout != 0 {
			defaultOptions.RequestTimeout = opts.RequestTimeout
		}

		if opts.Transport != nil {
			defaultOptions.Transport = opts.Transport
		}

		defaultOptions.RequestsPerSecond = opts.RequestsPerSecond
	}

	httpClient := http.Client{
		Transport: defaultOptions.Transport,
		Timeout:   defaultOptions.RequestTimeout,
	}

	var limiter *rate.Limiter
	if defaultOptions.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(defaultOptions.RequestsPerSecond), 1)
	}

	return &RESTClient{
		nodeRestURL: nodeRestURL,
		c:           &httpClient,
		limiter:     limiter,
	}, nil
}

func (r *RESTClient) GetBlockchainInfo(ctx context.Context) (*blockchain.BlockchainInfo, error) {
	var info blockchain.BlockchainInfo

	if err := r.callRest(ctx, buildJsonMethodPath("chaininfo"), nil, &info); err != nil {
		return nil, fmt.Errorf("failed to get blockchain info: %w", err)
	}

	return &info, nil
}

func (r *RESTClient) GetBlockHeader(
	ctx context.Context,
	hash blockchain.Hash,
) (*blockchain.BlockHeader, error) {
	var header blockchain.BlockHeader

	if err := r.callRest(
		ctx,
		buildJsonMethodPath("block", "notxdetails", hash.String()),
		nil,
		&header,
	); err != nil {
		return nil, fmt.Errorf("failed to get block header: %w", err)
	}

	return &header, nil
}

func (r *RESTClient) GetBlock(
	ctx context.Context,
	hash blockchain.Hash,
) (*blockchain.Block, error) {
	var block blockchain.Block

	if err := r.callRest(ctx, buildJsonMethodPath("block", hash.String()), nil, &block); err != nil {
		return nil, fmt.Errorf("failed to get block: %w", err)
	}

	return &block, nil
}

func (r *RESTClient) GetBlockHash(ctx context.Context, height int64) (blockchain.Hash, error) {
	var res GetBlockHashByHeightResponse

	if err := r.callRest(
		ctx,
		buildJsonMethodPath("blockhashbyheight", strconv.FormatInt(height, 10)),
		nil,
		&res,
	); err != nil {
		return nil, fmt.Errorf("failed to get block hash by height: %w", err)
	}

	return res.BlockHash, nil
}

func (r *RESTClient) GetTransaction(ctx context.Context, txID string) (*blockchain.Transaction, error) {
	var tx blockchain.Transaction

	if err := r.callRest(ctx, buildJsonMethodPath("tx", txID), nil, &tx); err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &tx, nil
}

// GetMempoolTxIDs returns the ids of all mempool transactions.
func (r *RESTClient) GetMempoolTxIDs(ctx context.Context) ([]string, error) {
	var contents MempoolContents

	if err := r.callRest(
		ctx,
		buildJsonMethodPath("mempool", "contents"),
		url.Values{"verbose": []string{"false"}},
		&contents,
	); err != nil {
		return nil, fmt.Errorf("failed to get mempool contents: %w", err)
	}

	return contents.TxIDs, nil
}

// GetUTXOs asks the node which of the outpoints are unspent. With checkMempool the
// node also treats outputs spent by mempool transactions as spent.
func (r *RESTClient) GetUTXOs(
	ctx context.Context,
	checkMempool bool,
	outpoints ...blockchain.Outpoint,
) (*blockchain.UTXOSet, error) {
	if len(outpoints) == 0 {
		return nil, ErrNoOutpoints
	}

	if len(outpoints) > MaxOutpointsPerRequest {
		return nil, fmt.Errorf("%w: %d", ErrTooManyOutpoints, len(outpoints))
	}

	elems := []string{"getutxos"}
	if checkMempool {
		elems = append(elems, "checkmempool")
	}

	for _, o := range outpoints {
		elems = append(elems, fmt.Sprintf("%s-%d", o.TxID, o.VOut))
	}

	var set blockchain.UTXOSet

	if err := r.callRest(ctx, buildJsonMethodPath(elems...), nil, &set); err != nil {
		return nil, fmt.Errorf("failed to get utxos: %w", err)
	}

	if len(set.Bitmap) != len(outpoints) {
		return nil, fmt.Errorf("%w: bitmap %q for %d outpoints", ErrUnexpectedResponse, set.Bitmap, len(outpoints))
	}

	return &set, nil
}

func (r *RESTClient) callRest(
	ctx context.Context,
	method string,
	query url.Values,
	unmarshalTo interface{},
) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	path, err := url.JoinPath("/", strings.TrimPrefix(r.nodeRestURL.Path, "/"), method)
	if err != nil {
		return fmt.Errorf("failed to join url path: %w", err)
	}

	u := url.URL{
		Scheme:   r.nodeRestURL.Scheme,
		Host:     r.nodeRestURL.Host,
		Path:     path,
		RawQuery: query.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	res, err := r.c.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode != http.StatusOK:
		return newBadStatusCodeError(res.StatusCode)
	}

	if !strings.HasPrefix(res.Header.Get("content-type"), "application/json") {
		return ErrUnknownResponseType
	}

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(resBytes, unmarshalTo); err != nil {
		return fmt.Errorf("failed to unmarshal json response body: %w", err)
	}

	return nil
}

func buildJsonMethodPath(elem ...string) string {
	return fmt.Sprintf("%s.json", path.Join(elem...))
}
