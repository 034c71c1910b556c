package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a YNAB v1 API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new YNAB API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// ListAccounts returns every account of a budget, including closed ones.
func (c *Client) ListAccounts(ctx context.Context, budgetID string) ([]Account, error) {
	var data struct {
		Accounts []Account `json:"accounts"`
	}
	path := fmt.Sprintf("/budgets/%s/accounts", url.PathEscape(budgetID))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to list accounts of budget %s: %w", budgetID, err)
	}
	return data.Accounts, nil
}

// ListTransactions returns one account's transactions changed since the given
// bound, together with the server knowledge of the response.
func (c *Client) ListTransactions(ctx context.Context, budgetID, accountID string, since Since) ([]Transaction, int64, error) {
	query := url.Values{}
	if since.IsDelta() {
		query.Set("last_knowledge_of_server", strconv.FormatInt(since.Knowledge, 10))
	} else {
		query.Set("since_date", since.Date.Format(DateLayout))
	}

	var data struct {
		Transactions    []Transaction `json:"transactions"`
		ServerKnowledge int64         `json:"server_knowledge"`
	}
	path := fmt.Sprintf("/budgets/%s/accounts/%s/transactions", url.PathEscape(budgetID), url.PathEscape(accountID))
	if err := c.do(ctx, http.MethodGet, path, query, nil, &data); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions of account %s: %w", accountID, err)
	}
	return data.Transactions, data.ServerKnowledge, nil
}

// CreateTransaction creates a single transaction.
func (c *Client) CreateTransaction(ctx context.Context, budgetID string, tx SaveTransaction) (*MutationResult, error) {
	payload := struct {
		Transaction SaveTransaction `json:"transaction"`
	}{Transaction: tx}

	var data mutationData
	path := fmt.Sprintf("/budgets/%s/transactions", url.PathEscape(budgetID))
	if err := c.do(ctx, http.MethodPost, path, nil, payload, &data); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return data.result(), nil
}

// UpdateTransactionFlag sets the flag color of an existing transaction and
// leaves every other field untouched.
func (c *Client) UpdateTransactionFlag(ctx context.Context, budgetID, transactionID string, flag FlagColor) (*MutationResult, error) {
	payload := map[string]any{
		"transaction": map[string]any{"flag_color": flag},
	}

	var data mutationData
	path := fmt.Sprintf("/budgets/%s/transactions/%s", url.PathEscape(budgetID), url.PathEscape(transactionID))
	if err := c.do(ctx, http.MethodPut, path, nil, payload, &data); err != nil {
		return nil, fmt.Errorf("failed to flag transaction %s: %w", transactionID, err)
	}
	return data.result(), nil
}

// DeleteTransaction deletes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, budgetID, transactionID string) (*MutationResult, error) {
	var data mutationData
	path := fmt.Sprintf("/budgets/%s/transactions/%s", url.PathEscape(budgetID), url.PathEscape(transactionID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	return data.result(), nil
}

type mutationData struct {
	Transaction     *Transaction `json:"transaction"`
	ServerKnowledge int64        `json:"server_knowledge"`
}

func (d mutationData) result() *MutationResult {
	res := &MutationResult{ServerKnowledge: d.ServerKnowledge}
	if d.Transaction != nil {
		res.Transaction = *d.Transaction
	}
	return res
}

// do sends a request and decodes the "data" member of the response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil {
			apiErr.ID = envelope.Error.ID
			apiErr.Name = envelope.Error.Name
			apiErr.Detail = envelope.Error.Detail
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
