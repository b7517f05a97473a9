package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/hunterlabs/hunter/internal/contracts"
	"github.com/hunterlabs/hunter/pkg/config"
	"github.com/hunterlabs/hunter/pkg/httputil"
	"github.com/hunterlabs/hunter/pkg/logger"
)

const (
	signaturesLimit  = 200
	maxSignatures    = 200
	txSampleSize     = 5
	heliusRPCTimeout = 30 * time.Second

	// Historical averages used when a metric cannot be derived from
	// signature data alone.
	defaultNewWalletShareBaseline = 0.3
	defaultRetentionBaseline      = 0.4
)

// OnchainIngestor derives per-entity transaction and wallet metrics from
// Helius RPC. It compares the reporting window against an equally sized
// baseline window immediately before it.
type OnchainIngestor struct {
	http    *httputil.Client
	logger  *logger.Logger
	rpcURL  string
	limiter *rate.Limiter
}

func NewOnchainIngestor(cfg *config.Config, client *httputil.Client, log *logger.Logger) *OnchainIngestor {
	rpcURL := cfg.Helius.RPCURL
	if rpcURL == "" && cfg.Helius.APIKey != "" {
		rpcURL = fmt.Sprintf("https://mainnet.helius-rpc.com/?api-key=%s", cfg.Helius.APIKey)
	}
	return &OnchainIngestor{
		http:    client,
		logger:  log,
		rpcURL:  rpcURL,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
}

// OnchainResult is one entity's on-chain metrics plus its key for merging.
type OnchainResult struct {
	EntityKey string
	Signal    contracts.OnchainSignal
	Err       error
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type signatureInfo struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
}

type parsedTransaction struct {
	Transaction struct {
		Message struct {
			AccountKeys []struct {
				Pubkey string `json:"pubkey"`
				Signer bool   `json:"signer"`
			} `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
}

func (o *OnchainIngestor) rpcCall(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if err := o.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := o.http.PostJSON(ctx, o.rpcURL, rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("helius rpc: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("helius rpc read: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("helius rpc %d: %s", resp.StatusCode, string(body))
	}

	var wrapped rpcResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return fmt.Errorf("helius rpc decode: %w", err)
	}
	if wrapped.Error != nil {
		return fmt.Errorf("helius rpc error %d: %s", wrapped.Error.Code, wrapped.Error.Message)
	}
	if result != nil && wrapped.Result != nil {
		return json.Unmarshal(wrapped.Result, result)
	}
	return nil
}

// signaturesInWindow pages getSignaturesForAddress, keeping signatures whose
// block time falls inside [after, before].
func (o *OnchainIngestor) signaturesInWindow(ctx context.Context, programID string, after, before int64) ([]signatureInfo, error) {
	var all []signatureInfo
	var lastSig string

	for len(all) < maxSignatures {
		params := map[string]interface{}{"limit": signaturesLimit}
		if lastSig != "" {
			params["before"] = lastSig
		}

		var batch []signatureInfo
		if err := o.rpcCall(ctx, "getSignaturesForAddress", []interface{}{programID, params}, &batch); err != nil {
			return all, err
		}
		if len(batch) == 0 {
			break
		}

		hitOldData := false
		for _, sig := range batch {
			if sig.BlockTime == nil {
				continue
			}
			if *sig.BlockTime < after {
				hitOldData = true
				break
			}
			if *sig.BlockTime <= before {
				all = append(all, sig)
			}
		}

		if hitOldData || len(batch) < signaturesLimit {
			break
		}
		lastSig = batch[len(batch)-1].Signature
	}

	return all, nil
}

// sampleUniqueWallets fetches a small random sample of transactions and
// extrapolates the unique signer count to the full signature set.
func (o *OnchainIngestor) sampleUniqueWallets(ctx context.Context, sigs []signatureInfo) int {
	if len(sigs) == 0 {
		return 0
	}

	shuffled := make([]signatureInfo, len(sigs))
	copy(shuffled, sigs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	sampleLen := txSampleSize
	if sampleLen > len(shuffled) {
		sampleLen = len(shuffled)
	}

	wallets := make(map[string]struct{})
	for _, sig := range shuffled[:sampleLen] {
		var tx parsedTransaction
		err := o.rpcCall(ctx, "getTransaction", []interface{}{
			sig.Signature,
			map[string]interface{}{"encoding": "jsonParsed", "maxSupportedTransactionVersion": 0},
		}, &tx)
		if err != nil {
			continue
		}
		for _, key := range tx.Transaction.Message.AccountKeys {
			if key.Signer {
				wallets[key.Pubkey] = struct{}{}
			}
		}
	}

	sampleRate := float64(sampleLen) / float64(len(sigs))
	return int(math.Round(float64(len(wallets)) / math.Max(sampleRate, 0.01)))
}

func (o *OnchainIngestor) ingestEntity(ctx context.Context, entity TrackedEntity, periodStart, periodEnd time.Time) contracts.OnchainSignal {
	periodLen := periodEnd.Sub(periodStart)
	baselineStart := periodStart.Add(-periodLen)

	var currentTx, baselineTx int
	var currentSigs, baselineSigs []signatureInfo

	for _, programID := range entity.ProgramIDs {
		sigs, err := o.signaturesInWindow(ctx, programID, periodStart.Unix(), periodEnd.Unix())
		if err != nil {
			o.logger.WithError(err).WithFields(map[string]interface{}{
				"entity":  entity.Key,
				"program": programID,
			}).Warn("Onchain fetch failed for program")
			continue
		}
		currentTx += len(sigs)
		currentSigs = append(currentSigs, sigs...)

		base, err := o.signaturesInWindow(ctx, programID, baselineStart.Unix(), periodStart.Unix())
		if err != nil {
			continue
		}
		baselineTx += len(base)
		baselineSigs = append(baselineSigs, base...)
	}

	currentWallets := o.sampleUniqueWallets(ctx, currentSigs)
	baselineWallets := o.sampleUniqueWallets(ctx, baselineSigs)

	// Approximate share of wallets not seen in the baseline window.
	newWalletShare := 0.0
	if currentWallets > 0 {
		newWalletShare = 1 - float64(baselineWallets)/float64(currentWallets)
		newWalletShare = math.Max(0, math.Min(1, newWalletShare))
	}

	// Retention heuristic: stable or growing wallet counts imply retention.
	retention := 0.3
	if baselineWallets > 0 {
		retention = math.Min(1, float64(currentWallets)/float64(baselineWallets)*0.5)
	}

	return contracts.OnchainSignal{
		TxCount:                float64(currentTx),
		TxCountBaseline:        float64(baselineTx),
		UniqueWallets:          float64(currentWallets),
		UniqueWalletsBaseline:  float64(baselineWallets),
		NewWalletShare:         newWalletShare,
		NewWalletShareBaseline: defaultNewWalletShareBaseline,
		Retention7D:            retention,
		Retention7DBaseline:    defaultRetentionBaseline,
	}
}

// Ingest collects on-chain metrics for every entity with program IDs.
// Per-entity failures produce empty signals instead of aborting the run.
func (o *OnchainIngestor) Ingest(ctx context.Context, entities []TrackedEntity, periodStart, periodEnd time.Time) []OnchainResult {
	if o.rpcURL == "" {
		o.logger.Warn("No Helius credentials, skipping onchain ingestion")
		return nil
	}

	var results []OnchainResult
	for _, entity := range entities {
		if len(entity.ProgramIDs) == 0 {
			continue
		}
		sig := o.ingestEntity(ctx, entity, periodStart, periodEnd)
		results = append(results, OnchainResult{EntityKey: entity.Key, Signal: sig})
		o.logger.WithFields(map[string]interface{}{
			"entity":      entity.Key,
			"tx_count":    sig.TxCount,
			"tx_baseline": sig.TxCountBaseline,
			"wallets":     sig.UniqueWallets,
		}).Debug("Onchain signals collected")
	}

	o.logger.WithField("entities", len(results)).Info("Onchain ingestion done")
	return results
}
