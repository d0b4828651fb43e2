package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
)

// FetchResult tracks separate counters for each outcome of a fetch cycle.
type FetchResult struct {
	TotalListed    int
	NewRecords     int
	AlreadyHandled int
	SkippedNonApp  int
	Usage          LLMUsage
	Errors         []string
}

// FetchAndClassify lists inbox messages, screens and classifies the new
// ones, and appends extracted applications to the JSON store. Progress is
// checkpointed every few records so an interrupt loses little work; a
// canceled context stops the loop after a final save.
func FetchAndClassify(ctx context.Context, cfg Config, db *sql.DB) (FetchResult, error) {
	var result FetchResult

	apps, err := LoadApplications(cfg.ApplicationsPath)
	if err != nil {
		return result, err
	}
	handled, err := CountProcessedMessages(db)
	if err != nil {
		return result, err
	}
	log.Printf("fetch start records=%d processed_ids=%d", len(apps), handled)

	svc, err := NewGmailService(ctx, cfg)
	if err != nil {
		return result, err
	}

	ids, err := FetchMessageIDs(ctx, svc, cfg.FetchSinceHours)
	if err != nil {
		return result, err
	}
	result.TotalListed = len(ids)
	log.Printf("fetch listed=%d since_hours=%d", len(ids), cfg.FetchSinceHours)

	dirty := false
	checkpoint := func() {
		if !dirty {
			return
		}
		if err := SaveApplications(cfg.ApplicationsPath, apps); err != nil {
			log.Printf("fetch checkpoint error: %v", err)
			return
		}
		dirty = false
	}
	defer checkpoint()

	for _, id := range ids {
		if ctx.Err() != nil {
			log.Printf("fetch interrupted, saving progress")
			break
		}
		if cfg.FetchLimit > 0 && result.NewRecords >= cfg.FetchLimit {
			log.Printf("fetch limit=%d reached", cfg.FetchLimit)
			break
		}

		processed, err := IsMessageProcessed(db, id)
		if err != nil {
			return result, err
		}
		if processed {
			result.AlreadyHandled++
			continue
		}

		content, err := FetchEmailContent(ctx, svc, id)
		if err != nil {
			log.Printf("fetch message error id=%s: %v", id, err)
			result.Errors = append(result.Errors, fmt.Sprintf("message %s: %v", id, err))
			continue
		}

		isApp, usage, err := IsJobApplicationEmail(cfg, content.Snippet)
		result.Usage.Add(usage)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("screen %s: %v", id, err))
			continue
		}
		if !isApp {
			result.SkippedNonApp++
			markProcessed(db, id)
			continue
		}

		classification, usage, err := ClassifyEmail(cfg, content.Body)
		result.Usage.Add(usage)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("classify %s: %v", id, err))
			continue
		}
		markProcessed(db, id)

		app, ok := ParseClassification(classification)
		if !ok {
			result.SkippedNonApp++
			continue
		}
		app.Date = content.Date
		app.EmailID = id

		log.Printf("fetch extracted company=%q title=%q status=%s date=%s",
			app.Company, app.JobTitle, app.Status, app.Date)
		apps = append(apps, app)
		result.NewRecords++
		dirty = true

		if err := InsertClassificationEntry(db, ClassificationEntry{
			MessageID:   id,
			Company:     app.Company,
			JobTitle:    app.JobTitle,
			Location:    app.Location,
			Status:      app.Status.String(),
			Observed:    app.Date,
			LLMProvider: cfg.LLMProvider,
			LLMModel:    cfg.LLMModel,
		}); err != nil {
			log.Printf("fetch audit log error id=%s: %v", id, err)
		}

		if result.NewRecords%10 == 0 {
			checkpoint()
		}
	}

	checkpoint()
	log.Printf("fetch done new=%d skipped_non_app=%d already=%d tokens=%d",
		result.NewRecords, result.SkippedNonApp, result.AlreadyHandled, result.Usage.TotalTokens())
	return result, nil
}

func markProcessed(db *sql.DB, id string) {
	if err := MarkMessageProcessed(db, id); err != nil {
		log.Printf("fetch mark processed error id=%s: %v", id, err)
	}
}

// CleanDuplicates runs the deduplicator over the JSON store and rewrites it.
func CleanDuplicates(cfg Config) (before, after int, err error) {
	apps, err := LoadApplications(cfg.ApplicationsPath)
	if err != nil {
		return 0, 0, err
	}
	cleaned := DeduplicateApplications(apps)
	if err := SaveApplications(cfg.ApplicationsPath, cleaned); err != nil {
		return len(apps), len(cleaned), err
	}
	log.Printf("clean before=%d after=%d removed=%d", len(apps), len(cleaned), len(apps)-len(cleaned))
	return len(apps), len(cleaned), nil
}

// FormatFetchSummary returns a one-line human-readable summary of a cycle.
func FormatFetchSummary(result FetchResult) string {
	parts := []string{fmt.Sprintf("%d new", result.NewRecords)}
	if result.AlreadyHandled > 0 {
		parts = append(parts, fmt.Sprintf("%d already handled", result.AlreadyHandled))
	}
	if result.SkippedNonApp > 0 {
		parts = append(parts, fmt.Sprintf("%d not applications", result.SkippedNonApp))
	}
	msg := fmt.Sprintf("Scanned %d emails: %s", result.TotalListed, strings.Join(parts, ", "))
	if len(result.Errors) > 0 {
		msg += fmt.Sprintf(" (%d errors)", len(result.Errors))
	}
	return msg
}
