package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
)

const DefaultCollection = "summaries"

// FirestoreStore keeps mirror documents in a Firestore collection. The
// client honours FIRESTORE_EMULATOR_HOST.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

type firestoreDocument struct {
	Text             string    `firestore:"text"`
	Summary          string    `firestore:"summary"`
	Timestamp        time.Time `firestore:"timestamp"`
	TextLength       int64     `firestore:"textLength"`
	SummaryLength    int64     `firestore:"summaryLength"`
	CompressionRatio int64     `firestore:"compressionRatio"`
}

func NewFirestoreStore(ctx context.Context, projectID, collection string) (*FirestoreStore, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, errors.New("project ID is empty")
	}

	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) Add(ctx context.Context, doc Document) (string, error) {
	ref, _, err := s.client.Collection(s.collection).Add(ctx, map[string]any{
		"text":             doc.Text,
		"summary":          doc.Summary,
		"timestamp":        firestore.ServerTimestamp,
		"textLength":       doc.TextLength,
		"summaryLength":    doc.SummaryLength,
		"compressionRatio": doc.CompressionRatio,
	})
	if err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}

	return ref.ID, nil
}

func (s *FirestoreStore) Latest(ctx context.Context, limit int) ([]Document, error) {
	snaps, err := s.client.Collection(s.collection).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		var fd firestoreDocument
		if err = snap.DataTo(&fd); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", snap.Ref.ID, err)
		}

		docs = append(docs, Document{
			ID:               snap.Ref.ID,
			Text:             fd.Text,
			Summary:          fd.Summary,
			Timestamp:        fd.Timestamp,
			TextLength:       int(fd.TextLength),
			SummaryLength:    int(fd.SummaryLength),
			CompressionRatio: int(fd.CompressionRatio),
		})
	}

	return docs, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
