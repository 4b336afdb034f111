package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"recbutton/internal/model"
)

// KodiClient implements Player against Kodi's JSON-RPC HTTP endpoint.
type KodiClient struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client
}

// KodiOption configures the Kodi client.
type KodiOption func(*KodiClient)

// WithAuth sets HTTP basic auth credentials for the JSON-RPC endpoint.
func WithAuth(username, password string) KodiOption {
	return func(c *KodiClient) {
		c.username = username
		c.password = password
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) KodiOption {
	return func(c *KodiClient) { c.httpClient.Timeout = d }
}

// NewKodiClient creates a Player talking to the given JSON-RPC endpoint,
// e.g. "http://localhost:8080/jsonrpc".
func NewKodiClient(endpoint string, opts ...KodiOption) *KodiClient {
	c := &KodiClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int    `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC request and decodes the result into out.
func (c *KodiClient) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kodi rpc %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kodi rpc %s: status %d: %s", method, resp.StatusCode, respBody)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("kodi rpc %s: %s (code %d)", method, rpcResp.Error.Message, rpcResp.Error.Code)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

// activePlayer returns the id of the active player, or
// model.ErrNothingPlaying when there is none.
func (c *KodiClient) activePlayer(ctx context.Context) (int, error) {
	var players []struct {
		PlayerID int    `json:"playerid"`
		Type     string `json:"type"`
	}
	if err := c.call(ctx, "Player.GetActivePlayers", nil, &players); err != nil {
		return 0, err
	}
	if len(players) == 0 {
		return 0, model.ErrNothingPlaying
	}
	return players[0].PlayerID, nil
}

// Time returns the current playback position in seconds.
func (c *KodiClient) Time(ctx context.Context) (float64, error) {
	playerID, err := c.activePlayer(ctx)
	if err != nil {
		return 0, err
	}

	var result struct {
		Time struct {
			Hours        int `json:"hours"`
			Minutes      int `json:"minutes"`
			Seconds      int `json:"seconds"`
			Milliseconds int `json:"milliseconds"`
		} `json:"time"`
	}
	params := map[string]any{
		"playerid":   playerID,
		"properties": []string{"time"},
	}
	if err := c.call(ctx, "Player.GetProperties", params, &result); err != nil {
		return 0, err
	}

	tm := result.Time
	return float64(tm.Hours*3600+tm.Minutes*60+tm.Seconds) + float64(tm.Milliseconds)/1000, nil
}

// Item returns the currently playing media item.
func (c *KodiClient) Item(ctx context.Context) (Item, error) {
	playerID, err := c.activePlayer(ctx)
	if err != nil {
		return Item{}, err
	}

	var result struct {
		Item struct {
			File      string `json:"file"`
			Title     string `json:"title"`
			ShowTitle string `json:"showtitle"`
			Season    int    `json:"season"`
			Episode   int    `json:"episode"`
			Type      string `json:"type"`
		} `json:"item"`
	}
	params := map[string]any{
		"playerid":   playerID,
		"properties": []string{"file", "title", "showtitle", "season", "episode"},
	}
	if err := c.call(ctx, "Player.GetItem", params, &result); err != nil {
		return Item{}, err
	}

	it := result.Item
	return Item{
		File:      it.File,
		Title:     it.Title,
		ShowTitle: it.ShowTitle,
		Season:    it.Season,
		Episode:   it.Episode,
		MediaType: it.Type,
	}, nil
}
