// internal/delivery/telegram/client.go
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TelegramClient клиент для работы с Telegram Bot API
type TelegramClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewTelegramClient создает новый клиент Telegram
func NewTelegramClient(apiBaseURL, token string) *TelegramClient {
	return &TelegramClient{
		httpClient: &http.Client{
			Timeout: 35 * time.Second,
		},
		baseURL: fmt.Sprintf("%s/bot%s/", apiBaseURL, token),
	}
}

// Call выполняет метод Bot API с JSON-параметрами
func (c *TelegramClient) Call(method string, params interface{}) (*TelegramResponse, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s params: %w", method, err)
	}

	resp, err := c.httpClient.Post(c.baseURL+method, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var result TelegramResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", method, err)
	}

	if !result.OK {
		return &result, fmt.Errorf("%s error %d: %s", method, result.ErrorCode, result.Description)
	}

	return &result, nil
}

// GetUpdates выполняет long poll получения обновлений
func (c *TelegramClient) GetUpdates(offset, timeout int) (*UpdatesResponse, error) {
	url := fmt.Sprintf("%sgetUpdates?offset=%d&timeout=%d", c.baseURL, offset, timeout)

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read getUpdates response: %w", err)
	}

	var result UpdatesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates response: %w", err)
	}

	return &result, nil
}
