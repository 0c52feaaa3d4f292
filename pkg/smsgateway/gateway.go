package smsgateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brightkatongo/learn-hub/internal/config"
)

// Gateway represents an SMS gateway interface
type Gateway interface {
	SendSMS(msisdn, message string) (string, error)
	GetDeliveryStatus(messageID string) (string, error)
}

// AfricasTalkingGateway sends SMS through the Africa's Talking bulk
// messaging API.
type AfricasTalkingGateway struct {
	BaseURL    string
	Username   string
	APIKey     string
	SenderID   string
	httpClient *http.Client
}

// MockGateway represents a mock SMS gateway for testing and local runs
type MockGateway struct {
	Name string

	// FailNext makes the next send return an error, for exercising
	// dispatch-failure paths.
	FailNext bool
	Sent     []MockMessage
}

// MockMessage records a message accepted by the mock gateway
type MockMessage struct {
	MSISDN  string
	Message string
}

// NewAfricasTalkingGateway creates a new Africa's Talking gateway
func NewAfricasTalkingGateway(cfg *config.Config) Gateway {
	return &AfricasTalkingGateway{
		BaseURL:  cfg.SMS.AfricasTalking.BaseURL,
		Username: cfg.SMS.AfricasTalking.Username,
		APIKey:   cfg.SMS.AfricasTalking.APIKey,
		SenderID: cfg.SMS.AfricasTalking.SenderID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMockGateway creates a new Mock SMS gateway
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{Name: name}
}

// SendSMS sends an SMS using the Africa's Talking gateway
func (g *AfricasTalkingGateway) SendSMS(msisdn, message string) (string, error) {
	form := url.Values{}
	form.Set("username", g.Username)
	form.Set("to", msisdn)
	form.Set("message", message)
	if g.SenderID != "" {
		form.Set("from", g.SenderID)
	}

	req, err := http.NewRequest(http.MethodPost, g.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", g.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		SMSMessageData struct {
			Recipients []struct {
				MessageID string `json:"messageId"`
				Status    string `json:"status"`
			} `json:"Recipients"`
		} `json:"SMSMessageData"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	recipients := response.SMSMessageData.Recipients
	if len(recipients) == 0 {
		return "", fmt.Errorf("gateway accepted no recipients")
	}
	if status := recipients[0].Status; status != "Success" {
		return "", fmt.Errorf("gateway rejected message: %s", status)
	}

	return recipients[0].MessageID, nil
}

// GetDeliveryStatus gets the delivery status of an SMS. Africa's Talking
// pushes delivery reports over a callback rather than exposing a poll
// endpoint, so a sent message is reported as sent.
func (g *AfricasTalkingGateway) GetDeliveryStatus(messageID string) (string, error) {
	if messageID == "" {
		return "", fmt.Errorf("message ID is required")
	}
	return "SENT", nil
}

// SendSMS sends an SMS using the Mock gateway
func (g *MockGateway) SendSMS(msisdn, message string) (string, error) {
	if g.FailNext {
		g.FailNext = false
		return "", fmt.Errorf("%s gateway unavailable", g.Name)
	}
	g.Sent = append(g.Sent, MockMessage{MSISDN: msisdn, Message: message})
	return fmt.Sprintf("%s-MOCK-MSG-%d", g.Name, time.Now().UnixNano()), nil
}

// GetDeliveryStatus gets the delivery status of an SMS from the Mock gateway
func (g *MockGateway) GetDeliveryStatus(messageID string) (string, error) {
	return "DELIVERED", nil
}
