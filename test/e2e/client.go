package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is an E2E test client for the battler control surface. It
// provides methods for the battle REST endpoints and the per-battle
// WebSocket log stream.
type Client struct {
	baseURL    string
	httpClient *http.Client
	wsConn     *websocket.Conn
	wsMessages chan map[string]interface{}
	wsErrors   chan error
	wsCloseCh  chan struct{}
	wsMutex    sync.Mutex
	log        *logrus.Logger
}

// NewClient creates a new E2E test client.
func NewClient(baseURL string) *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		wsMessages: make(chan map[string]interface{}, 100),
		wsErrors:   make(chan error, 10),
		wsCloseCh:  make(chan struct{}),
		log:        logger,
	}
}

// post issues a JSON POST and decodes the JSON response body into out
// (when out is non-nil), returning an error for any non-2xx status.
func (c *Client) post(path string, body, out interface{}) error {
	var reqBody []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = b
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("request to %s failed with status %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// get issues a GET and decodes the JSON response body into out.
func (c *Client) get(path string, out interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("request to %s failed with status %d: %s", path, resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}

// TeamMon mirrors pkg/server's teamMonRequest wire shape.
type TeamMon struct {
	Name    string   `json:"name"`
	Types   []string `json:"types"`
	Level   int      `json:"level"`
	Stats   [5]int   `json:"stats"`
	HP      int      `json:"hp"`
	MoveIDs []string `json:"move_ids"`
}

// Player mirrors pkg/server's playerRequest wire shape.
type Player struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Team []TeamMon `json:"team"`
}

// Choice mirrors pkg/server's wsChoiceMessage wire shape.
type Choice struct {
	Mon      int    `json:"mon"`
	Kind     string `json:"kind"`
	MoveID   string `json:"move_id,omitempty"`
	Target   int    `json:"target,omitempty"`
	SwitchTo int    `json:"switch_to,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
}

// CreateBattle posts a battle-creation request and returns the new
// battle's id.
func (c *Client) CreateBattle(players []Player) (string, error) {
	var resp struct {
		BattleID string `json:"battle_id"`
	}
	if err := c.post("/battles", map[string]interface{}{"players": players}, &resp); err != nil {
		return "", err
	}
	return resp.BattleID, nil
}

// SubmitChoice submits one player's choice for the current turn.
func (c *Client) SubmitChoice(battleID, playerID string, choice Choice) error {
	return c.post(fmt.Sprintf("/battles/%s/choices", battleID), map[string]interface{}{
		"player_id": playerID,
		"choice":    choice,
	}, nil)
}

// GetLog fetches every battle-log line recorded so far.
func (c *Client) GetLog(battleID string) ([]string, error) {
	var resp struct {
		Lines []string `json:"lines"`
	}
	if err := c.get(fmt.Sprintf("/battles/%s/log", battleID), &resp); err != nil {
		return nil, err
	}
	return resp.Lines, nil
}

// ConnectBattleWebSocket connects to a battle's log-streaming
// WebSocket endpoint as the given player.
func (c *Client) ConnectBattleWebSocket(battleID, playerID string) error {
	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()

	if c.wsConn != nil {
		return fmt.Errorf("WebSocket already connected")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}

	wsScheme := "ws"
	if u.Scheme == "https" {
		wsScheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/battles/%s/ws?player_id=%s", wsScheme, u.Host, battleID, playerID)

	c.log.Debugf("Connecting to WebSocket: %s", wsURL)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to WebSocket: %w", err)
	}

	c.wsConn = conn
	go c.readWebSocketMessages()

	return nil
}

// readWebSocketMessages reads log lines from the WebSocket connection,
// wrapping each as {"line": "..."} so GetNextEvent has a stable shape.
func (c *Client) readWebSocketMessages() {
	defer func() {
		close(c.wsMessages)
		close(c.wsErrors)
	}()

	for {
		select {
		case <-c.wsCloseCh:
			return
		default:
			_, data, err := c.wsConn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.wsErrors <- fmt.Errorf("WebSocket read error: %w", err)
				}
				return
			}
			c.wsMessages <- map[string]interface{}{"line": string(data)}
		}
	}
}

// GetNextEvent returns the next WebSocket message.
func (c *Client) GetNextEvent(timeout time.Duration) (map[string]interface{}, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-c.wsMessages:
		return msg, nil
	case err := <-c.wsErrors:
		return nil, err
	case <-timer.C:
		return nil, fmt.Errorf("timeout waiting for event")
	}
}

// CloseWebSocket closes the WebSocket connection.
func (c *Client) CloseWebSocket() error {
	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()

	if c.wsConn == nil {
		return nil
	}

	close(c.wsCloseCh)

	err := c.wsConn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	if err != nil {
		c.log.Warnf("Failed to send close message: %v", err)
	}

	if err := c.wsConn.Close(); err != nil {
		return fmt.Errorf("failed to close WebSocket: %w", err)
	}

	c.wsConn = nil
	return nil
}

// Close closes all connections.
func (c *Client) Close() error {
	if c.wsConn != nil {
		return c.CloseWebSocket()
	}
	return nil
}

// WaitForHealth waits for the server to be healthy.
func (c *Client) WaitForHealth(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := c.httpClient.Get(c.baseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}

		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become healthy within %v", timeout)
}
