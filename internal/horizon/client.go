package horizon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atelis/pisweep/internal/config"
	"github.com/atelis/pisweep/internal/models"
)

// Client reads account state from a Horizon-compatible REST API. Reads are
// always fresh; nothing is cached between calls.
type Client struct {
	httpClient *http.Client
	baseURL    string
	rl         *RateLimiter
}

// NewClient creates a read client for the given Horizon base URL.
func NewClient(baseURL string, rl *RateLimiter) *Client {
	slog.Info("horizon client created", "baseURL", baseURL)

	return &Client{
		httpClient: &http.Client{Timeout: config.ReadTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		rl:         rl,
	}
}

// accountResponse is the subset of the Horizon /accounts/{id} payload we use.
type accountResponse struct {
	Sequence      string `json:"sequence"`
	SubentryCount int    `json:"subentry_count"`
	Balances      []struct {
		Balance   string `json:"balance"`
		AssetType string `json:"asset_type"`
	} `json:"balances"`
	Signers []struct {
		Key string `json:"key"`
	} `json:"signers"`
}

// LoadAccount fetches the account record. Unlike the lenient monitoring
// reads, failures here are hard errors: transaction assembly needs a real
// sequence number.
func (c *Client) LoadAccount(ctx context.Context, accountID string) (models.AccountSnapshot, error) {
	var snap models.AccountSnapshot

	if err := c.rl.Wait(ctx); err != nil {
		return snap, fmt.Errorf("rate limiter wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/accounts/%s", c.baseURL, url.PathEscape(accountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return snap, fmt.Errorf("create account request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return snap, fmt.Errorf("%w: fetch account %s: %s", config.ErrTransport, accountID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return snap, fmt.Errorf("%w: %s", config.ErrAccountNotFound, accountID)
	}
	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("%w: account fetch HTTP %d", config.ErrTransport, resp.StatusCode)
	}

	var body accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return snap, fmt.Errorf("%w: decode account response: %s", config.ErrTransport, err)
	}

	sequence, err := strconv.ParseInt(body.Sequence, 10, 64)
	if err != nil {
		return snap, fmt.Errorf("%w: parse sequence %q: %s", config.ErrTransport, body.Sequence, err)
	}

	total := decimal.Zero
	for _, bal := range body.Balances {
		if bal.AssetType == "native" {
			parsed, err := decimal.NewFromString(bal.Balance)
			if err != nil {
				return snap, fmt.Errorf("%w: parse native balance %q: %s", config.ErrTransport, bal.Balance, err)
			}
			total = parsed
			break
		}
	}

	snap = models.AccountSnapshot{
		AccountID:     accountID,
		Sequence:      sequence,
		TotalNative:   total,
		NumSubentries: body.SubentryCount,
		NumSigners:    len(body.Signers),
	}

	slog.Debug("account loaded",
		"accountID", accountID,
		"totalNative", total.String(),
		"subentries", snap.NumSubentries,
		"signers", snap.NumSigners,
	)

	return snap, nil
}

// AccountSnapshot is the lenient monitoring read: any failure degrades to a
// zero snapshot ("no information this cycle") rather than an error.
func (c *Client) AccountSnapshot(ctx context.Context, accountID string) models.AccountSnapshot {
	snap, err := c.LoadAccount(ctx, accountID)
	if err != nil {
		slog.Warn("account snapshot unavailable, treating balance as zero",
			"accountID", accountID,
			"error", err,
		)
		return models.AccountSnapshot{AccountID: accountID}
	}
	return snap
}

// claimableBalancesResponse is the Horizon claimable-balances collection.
type claimableBalancesResponse struct {
	Embedded struct {
		Records []claimableBalanceRecord `json:"records"`
	} `json:"_embedded"`
}

type claimableBalanceRecord struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Claimants []struct {
		Destination string    `json:"destination"`
		Predicate   Predicate `json:"predicate"`
	} `json:"claimants"`
}

// LockedBalances fetches all claimable balances held for the given claimant.
// Transport failures and non-200 responses yield an empty slice — the caller
// must treat that as "no information this cycle", not as "no locked funds".
func (c *Client) LockedBalances(ctx context.Context, claimant string) []models.LockedBalance {
	if err := c.rl.Wait(ctx); err != nil {
		return nil
	}

	endpoint := fmt.Sprintf("%s/claimable_balances?claimant=%s", c.baseURL, url.QueryEscape(claimant))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Warn("create claimable balances request failed", "error", err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("claimable balances fetch failed",
			"claimant", claimant,
			"error", err,
		)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("claimable balances fetch returned non-200",
			"claimant", claimant,
			"status", resp.StatusCode,
		)
		return nil
	}

	var body claimableBalancesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Warn("decode claimable balances response failed", "error", err)
		return nil
	}

	locked := make([]models.LockedBalance, 0, len(body.Embedded.Records))
	for _, record := range body.Embedded.Records {
		amount, err := decimal.NewFromString(record.Amount)
		if err != nil {
			slog.Warn("skipping claimable balance with unparsable amount",
				"balanceID", record.ID,
				"amount", record.Amount,
				"error", err,
			)
			continue
		}

		lb := models.LockedBalance{
			BalanceID: record.ID,
			Amount:    amount,
		}

		for _, cl := range record.Claimants {
			deadline, ok := cl.Predicate.UnlockDeadline()
			if !ok {
				continue
			}
			unlockTime, err := ParseDeadline(deadline)
			if err != nil {
				// Unparsable timestamps downgrade the balance to "no
				// deadline": still visible, excluded from scheduling.
				slog.Warn("could not parse unlock time",
					"balanceID", record.ID,
					"deadline", deadline,
					"error", err,
				)
				continue
			}
			lb.UnlockTime = &unlockTime
		}

		locked = append(locked, lb)
	}

	slog.Debug("locked balances fetched",
		"claimant", claimant,
		"count", len(locked),
	)

	return locked
}

// ClaimableAmount fetches the current amount of a single claimable balance.
// Used right before a claim so the forward amount is derived from fresh data.
func (c *Client) ClaimableAmount(ctx context.Context, balanceID string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ClaimInfoTimeout)
	defer cancel()

	if err := c.rl.Wait(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("rate limiter wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/claimable_balances/%s", c.baseURL, url.PathEscape(balanceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create claimable balance request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: fetch claimable balance %s: %s", config.ErrTransport, balanceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: claimable balance fetch HTTP %d", config.ErrTransport, resp.StatusCode)
	}

	var record claimableBalanceRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode claimable balance: %s", config.ErrTransport, err)
	}

	amount, err := decimal.NewFromString(record.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: parse claimable amount %q: %s", config.ErrTransport, record.Amount, err)
	}

	return amount, nil
}
