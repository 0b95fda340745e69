package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/driftlabs/driftsync/internal/client/storage"
	"github.com/driftlabs/driftsync/internal/models"
	"github.com/driftlabs/driftsync/internal/validation"
)

func (c *Cli) runAdd(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("add", flag.ContinueOnError)
	docType := flags.String("type", "note", "document type (note, snippet, todo, workspace)")
	title := flags.String("title", "", "document title")
	status := flags.String("status", "", "document status")
	tags := flags.String("tags", "", "comma-separated tags")
	body := flags.String("body", "", "document body")
	if err := flags.Parse(args); err != nil {
		return err
	}

	parsedType, err := models.ParseDocumentType(*docType)
	if err != nil {
		return err
	}
	if err := validation.ValidateTitle(*title); err != nil {
		return err
	}

	changes, err := c.engine.NewState(ctx, documentFields(*title, *status, *body, parseTags(*tags)))
	if err != nil {
		return fmt.Errorf("failed to build document state: %w", err)
	}

	docID := uuid.New().String()
	doc, err := c.coordinator.Stage(ctx, docID, parsedType, models.OpCreate, changes, nil)
	if err != nil {
		return err
	}

	c.io.Printf("Created %s %s (%q). It will sync when the server is reachable.\n",
		doc.Type, doc.ID, doc.Metadata.Title)
	return nil
}

func (c *Cli) runEdit(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("edit", flag.ContinueOnError)
	title := flags.String("title", "", "new title")
	status := flags.String("status", "", "new status")
	tags := flags.String("tags", "", "comma-separated tags")
	body := flags.String("body", "", "new body")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("usage: edit [flags] <document-id>")
	}
	docID := flags.Arg(0)

	local, err := c.documents.GetDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return fmt.Errorf("document %s not found locally; sync first", docID)
		}
		return err
	}

	fields := make(map[string]any)
	if *title != "" {
		if err := validation.ValidateTitle(*title); err != nil {
			return err
		}
		fields["title"] = *title
	}
	if *status != "" {
		fields["status"] = *status
	}
	if *tags != "" {
		fields["tags"] = parseTags(*tags)
	}
	if *body != "" {
		fields["body"] = *body
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to change")
	}

	changes, err := c.engine.SetFields(ctx, local.State, fields)
	if err != nil {
		return fmt.Errorf("failed to apply edit: %w", err)
	}

	doc, err := c.coordinator.Stage(ctx, docID, local.Type, models.OpUpdate, changes, nil)
	if err != nil {
		return err
	}

	c.io.Printf("Updated %s (%q).\n", doc.ID, doc.Metadata.Title)
	return nil
}

func (c *Cli) runGet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: get <document-id>")
	}

	doc, err := c.documents.GetDocument(ctx, args[0])
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return fmt.Errorf("document %s not found locally", args[0])
		}
		return err
	}

	c.io.Printf("ID:       %s\n", doc.ID)
	c.io.Printf("Type:     %s\n", doc.Type)
	if doc.Metadata != nil {
		c.io.Printf("Title:    %s\n", doc.Metadata.Title)
		if doc.Metadata.Status != "" {
			c.io.Printf("Status:   %s\n", doc.Metadata.Status)
		}
		if len(doc.Metadata.Tags) > 0 {
			c.io.Printf("Tags:     %s\n", strings.Join(doc.Metadata.Tags, ", "))
		}
	}
	if doc.LastSync.IsZero() {
		c.io.Println("Synced:   never")
	} else {
		c.io.Printf("Synced:   %s\n", doc.LastSync.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (c *Cli) runList(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("list", flag.ContinueOnError)
	docType := flags.String("type", "", "filter by document type")
	if err := flags.Parse(args); err != nil {
		return err
	}

	var parsedType models.DocumentType
	if *docType != "" {
		var err error
		parsedType, err = models.ParseDocumentType(*docType)
		if err != nil {
			return err
		}
	}

	docs, err := c.documents.ListDocuments(ctx, parsedType, false)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		c.io.Println("No documents.")
		return nil
	}

	for _, doc := range docs {
		title := ""
		if doc.Metadata != nil {
			title = doc.Metadata.Title
		}
		c.io.Printf("%-36s  %-9s  %s\n", doc.ID, doc.Type, title)
	}
	return nil
}

func (c *Cli) runDelete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <document-id>")
	}
	docID := args[0]

	local, err := c.documents.GetDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return fmt.Errorf("document %s not found locally", docID)
		}
		return err
	}

	if _, err := c.coordinator.Stage(ctx, docID, local.Type, models.OpDelete, nil, nil); err != nil {
		return err
	}

	c.io.Printf("Deleted %s. The server copy goes away on the next sync.\n", docID)
	return nil
}

func documentFields(title, status, body string, tags []string) map[string]any {
	fields := map[string]any{"title": title}
	if status != "" {
		fields["status"] = status
	}
	if body != "" {
		fields["body"] = body
	}
	if len(tags) > 0 {
		fields["tags"] = tags
	}
	return fields
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
