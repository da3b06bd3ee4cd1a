package mirror

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const emulatorProjectID = "textsummarizer-test"

func newEmulatorStore(t *testing.T) *FirestoreStore {
	t.Helper()

	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}

	store, err := NewFirestoreStore(context.Background(), emulatorProjectID, "summaries-"+uuid.NewString())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestNewFirestoreStoreRequiresProject(t *testing.T) {
	_, err := NewFirestoreStore(context.Background(), " ", "")
	require.Error(t, err)
}

func TestFirestoreStoreAddAndLatest(t *testing.T) {
	ctx := context.Background()
	store := newEmulatorStore(t)

	first := NewDocument("first original text", "first")
	firstID, err := store.Add(ctx, first)
	require.NoError(t, err)
	require.NotEmpty(t, firstID)

	// Server timestamps must differ for the ordering check.
	time.Sleep(10 * time.Millisecond)

	second := NewDocument("second original text, a bit longer", "second")
	secondID, err := store.Add(ctx, second)
	require.NoError(t, err)

	docs, err := store.Latest(ctx, syncLimit)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	require.Equal(t, secondID, docs[0].ID)
	require.Equal(t, firstID, docs[1].ID)
	require.False(t, docs[0].Timestamp.Before(docs[1].Timestamp))

	got := docs[0]
	require.Equal(t, second.Text, got.Text)
	require.Equal(t, second.Summary, got.Summary)
	require.Equal(t, second.TextLength, got.TextLength)
	require.Equal(t, second.SummaryLength, got.SummaryLength)
	require.Equal(t, second.CompressionRatio, got.CompressionRatio)
	require.False(t, got.Timestamp.IsZero())

	limited, err := store.Latest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, secondID, limited[0].ID)
}
