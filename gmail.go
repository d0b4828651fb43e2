package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// NewGmailService builds an authenticated read-only Gmail client from the
// configured client secret and cached token. The first run prompts for an
// authorization code on the console and caches the token for later runs.
func NewGmailService(ctx context.Context, cfg Config) (*gmail.Service, error) {
	secret, err := os.ReadFile(cfg.GmailCredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials %s: %w", cfg.GmailCredentialsPath, err)
	}
	oauthCfg, err := google.ConfigFromJSON(secret, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}

	token, err := tokenFromFile(cfg.GmailTokenPath)
	if err != nil {
		token, err = tokenFromWeb(ctx, oauthCfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.GmailTokenPath, token); err != nil {
			log.Printf("gmail token cache error: %v", err)
		}
	}

	client := oauthCfg.Client(ctx, token)
	return gmail.NewService(ctx, option.WithHTTPClient(client))
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	return token, json.NewDecoder(f).Decode(token)
}

func tokenFromWeb(ctx context.Context, oauthCfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Authorize Gmail access by visiting:\n%s\n\nPaste the authorization code: ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}
	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// FetchMessageIDs lists INBOX message IDs, newest first, following every
// result page. sinceHours > 0 restricts the query to Gmail's day-granular
// after: window covering that many hours back.
func FetchMessageIDs(ctx context.Context, svc *gmail.Service, sinceHours int) ([]string, error) {
	query := ""
	if sinceHours > 0 {
		threshold := time.Now().Add(-time.Duration(sinceHours) * time.Hour)
		query = "after:" + threshold.Format("2006/01/02")
	}

	var ids []string
	pageToken := ""
	page := 0
	for {
		call := svc.Users.Messages.List("me").LabelIds("INBOX").Q(query).MaxResults(500)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		var resp *gmail.ListMessagesResponse
		err := withRetry(3, time.Second, func() error {
			var e error
			resp, e = call.Context(ctx).Do()
			return e
		})
		if err != nil {
			return ids, fmt.Errorf("list messages: %w", err)
		}
		page++
		log.Printf("gmail list page=%d messages=%d query=%q", page, len(resp.Messages), query)
		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
		}
		if resp.NextPageToken == "" {
			return ids, nil
		}
		pageToken = resp.NextPageToken
	}
}

// EmailContent is the pieces of a message the classifier consumes.
type EmailContent struct {
	ID      string
	Snippet string
	Body    string
	Date    string // YYYY-MM-DD, empty when the Date header is unusable
}

func FetchEmailContent(ctx context.Context, svc *gmail.Service, id string) (EmailContent, error) {
	var msg *gmail.Message
	err := withRetry(2, 500*time.Millisecond, func() error {
		var e error
		msg, e = svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		return e
	})
	if err != nil {
		return EmailContent{}, fmt.Errorf("get message %s: %w", id, err)
	}

	return EmailContent{
		ID:      id,
		Snippet: msg.Snippet,
		Body:    extractBody(msg.Payload),
		Date:    headerDate(msg.Payload),
	}, nil
}

// extractBody walks the MIME tree for the first text/plain part, falling
// back to text/html and then the top-level body.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if body := findPartBody(payload, "text/plain"); body != "" {
		return body
	}
	if body := findPartBody(payload, "text/html"); body != "" {
		return body
	}
	return decodePartBody(payload)
}

func findPartBody(part *gmail.MessagePart, mimeType string) string {
	if part.MimeType == mimeType {
		if body := decodePartBody(part); body != "" {
			return body
		}
	}
	for _, child := range part.Parts {
		if body := findPartBody(child, mimeType); body != "" {
			return body
		}
	}
	return ""
}

func decodePartBody(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		// Some senders omit padding.
		data, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}
	return string(data)
}

func headerDate(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if h.Name == "Date" {
			t, err := mail.ParseDate(h.Value)
			if err != nil {
				return ""
			}
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func withRetry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
