// Package mailer wraps the Brevo REST API for the two things the site
// needs: forwarding contact-form messages as transactional email and
// upserting marketing contacts into lists.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const brevoRequestTimeout = 15 * time.Second

// ContactMessage is one submission of the public contact form. ReplyEmail
// becomes the reply-to address so the team can answer directly from their
// inbox.
type ContactMessage struct {
	Name       string
	ReplyEmail string
	Subject    string
	Body       string
}

// Contact is a marketing contact to create or update. Attributes map to
// Brevo contact attributes by their upstream names (NOMBRE, PROVINCIA,
// etc.); ListIDs is optional.
type Contact struct {
	Email      string
	Attributes map[string]string
	ListIDs    []int64
}

// Client talks to the Brevo v3 API. Authentication is a per-request
// api-key header.
type Client struct {
	baseURL    string
	apiKey     string
	sender     brevoAddress
	recipient  brevoAddress
	httpClient *http.Client
}

type Config struct {
	BaseURL string
	APIKey  string
	// SenderEmail must be a Brevo-verified sender; contact mail is sent
	// from it with the submitter as reply-to.
	SenderEmail    string
	SenderName     string
	RecipientEmail string
	RecipientName  string
	// HTTPClient overrides the default client, used by tests.
	HTTPClient *http.Client
}

// NewClient creates a Brevo client. The API key must be present; callers
// decide beforehand whether the provider is configured at all.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: brevoRequestTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		sender:     brevoAddress{Email: cfg.SenderEmail, Name: cfg.SenderName},
		recipient:  brevoAddress{Email: cfg.RecipientEmail, Name: cfg.RecipientName},
		httpClient: httpClient,
	}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmailRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	ReplyTo     *brevoAddress  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoContactRequest struct {
	Email         string            `json:"email"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	ListIDs       []int64           `json:"listIds,omitempty"`
	UpdateEnabled bool              `json:"updateEnabled"`
}

// SendContactEmail forwards a form submission to the configured recipient
// as a transactional email.
func (c *Client) SendContactEmail(ctx context.Context, msg ContactMessage) error {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "Nuevo mensaje desde leycura.org"
	}
	payload := brevoEmailRequest{
		Sender:      c.sender,
		To:          []brevoAddress{c.recipient},
		ReplyTo:     &brevoAddress{Email: msg.ReplyEmail, Name: msg.Name},
		Subject:     subject,
		HTMLContent: renderContactHTML(msg),
	}
	return c.post(ctx, "/v3/smtp/email", payload)
}

// UpsertContact creates the contact or updates it in place when the email
// already exists.
func (c *Client) UpsertContact(ctx context.Context, contact Contact) error {
	payload := brevoContactRequest{
		Email:         contact.Email,
		Attributes:    contact.Attributes,
		ListIDs:       contact.ListIDs,
		UpdateEnabled: true,
	}
	return c.post(ctx, "/v3/contacts", payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

func renderContactHTML(msg ContactMessage) string {
	var b strings.Builder
	b.WriteString("<h2>Nuevo mensaje de contacto</h2>")
	b.WriteString("<p><strong>Nombre:</strong> " + htmlEscape(msg.Name) + "</p>")
	b.WriteString("<p><strong>Email:</strong> " + htmlEscape(msg.ReplyEmail) + "</p>")
	if subject := strings.TrimSpace(msg.Subject); subject != "" {
		b.WriteString("<p><strong>Asunto:</strong> " + htmlEscape(subject) + "</p>")
	}
	b.WriteString("<p><strong>Mensaje:</strong></p><p>" + strings.ReplaceAll(htmlEscape(msg.Body), "\n", "<br>") + "</p>")
	return b.String()
}

func htmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}
