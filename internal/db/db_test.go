// Package db provides integration tests for SurrealDB operations.
package db

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/merfai/merf-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client
var testContainer testcontainers.Container

const testDimension = 8

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	// Start SurrealDB container
	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	// Get container host and port
	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	// Connect to test database
	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	// Initialize schema with a small test embedding dimension
	if err := testDB.InitSchema(ctx, testDimension); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Run tests
	code := m.Run()

	// Cleanup
	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// requireDB skips individual tests in short mode, where TestMain started
// no container.
func requireDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// dummyEmbedding returns a deterministic test vector.
func dummyEmbedding() []float32 {
	embedding := make([]float32, testDimension)
	for i := range embedding {
		embedding[i] = float32(i+1) / float32(testDimension)
	}
	return embedding
}

func testDreamInput(title string) models.DreamInput {
	return models.DreamInput{
		Title:       title,
		Description: "Karanlık bir koridorda düşüş yaşadım",
		Location:    "ev",
		Emotion:     "korku",
		Intensity:   8,
		Themes:      []string{"düşüş"},
		Objects:     []string{"merdiven"},
		DreamDate:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndGetDream(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	dream, err := testDB.QueryCreateDream(ctx, testDreamInput("Koridor"))
	require.NoError(t, err, "create dream")
	require.NotNil(t, dream)

	assert.Equal(t, "Koridor", dream.Title)
	assert.Equal(t, "ev", dream.Location)
	assert.Equal(t, 8, dream.Intensity)
	assert.Equal(t, []string{"düşüş"}, dream.Themes)
	assert.Empty(t, dream.Embedding, "embedding starts empty")

	id := models.MustRecordIDString(dream.ID)
	got, err := testDB.QueryGetDream(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, dream.Title, got.Title)
}

func TestGetDreamNotFound(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	got, err := testDB.QueryGetDream(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetDreamEmbedding(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	dream, err := testDB.QueryCreateDream(ctx, testDreamInput("Embed"))
	require.NoError(t, err)

	id := models.MustRecordIDString(dream.ID)
	require.NoError(t, testDB.QuerySetDreamEmbedding(ctx, id, dummyEmbedding()))

	got, err := testDB.QueryGetDream(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Embedding, testDimension)
}

func TestListDreamsOrderAndLimit(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx))

	for i, title := range []string{"eski", "orta", "yeni"} {
		input := testDreamInput(title)
		input.DreamDate = time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC)
		_, err := testDB.QueryCreateDream(ctx, input)
		require.NoError(t, err)
	}

	dreams, err := testDB.QueryListDreams(ctx, 0)
	require.NoError(t, err)
	require.Len(t, dreams, 3)
	assert.Equal(t, "yeni", dreams[0].Title, "newest first")

	limited, err := testDB.QueryListDreams(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeleteDream(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	dream, err := testDB.QueryCreateDream(ctx, testDreamInput("Silinecek"))
	require.NoError(t, err)

	id := models.MustRecordIDString(dream.ID)
	require.NoError(t, testDB.QueryDeleteDream(ctx, id))

	got, err := testDB.QueryGetDream(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateAndGetDejavu(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	trigger := "metro istasyonu"
	entry, err := testDB.QueryCreateDejavu(ctx, models.DejavuInput{
		Description:    "Bu anı daha önce yaşadım",
		Location:       "okul",
		Emotion:        "şaşkınlık",
		Familiarity:    7,
		TriggerContext: &trigger,
		EntryDate:      time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err, "create dejavu")
	require.NotNil(t, entry)

	assert.Equal(t, "okul", entry.Location)
	assert.Equal(t, 7, entry.Familiarity)
	require.NotNil(t, entry.TriggerContext)
	assert.Equal(t, trigger, *entry.TriggerContext)

	id := models.MustRecordIDString(entry.ID)
	got, err := testDB.QueryGetDejavu(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.Description, got.Description)
}

func TestSetDejavuEmbedding(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	entry, err := testDB.QueryCreateDejavu(ctx, models.DejavuInput{
		Description: "Tanıdık koridor",
		Location:    "ev",
		Emotion:     "merak",
		Familiarity: 5,
		EntryDate:   time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	id := models.MustRecordIDString(entry.ID)
	require.NoError(t, testDB.QuerySetDejavuEmbedding(ctx, id, dummyEmbedding()))

	got, err := testDB.QueryGetDejavu(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Embedding, testDimension)
}

func TestUnembeddedBackfillQueries(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx))

	embedded, err := testDB.QueryCreateDream(ctx, testDreamInput("embedded"))
	require.NoError(t, err)
	require.NoError(t, testDB.QuerySetDreamEmbedding(ctx,
		models.MustRecordIDString(embedded.ID), dummyEmbedding()))

	_, err = testDB.QueryCreateDream(ctx, testDreamInput("pending"))
	require.NoError(t, err)

	pending, err := testDB.QueryUnembeddedDreams(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "pending", pending[0].Title)

	entries, err := testDB.QueryUnembeddedDejavu(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSearchDreams(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	require.NoError(t, testDB.WipeData(ctx))

	input := testDreamInput("Deniz")
	input.Description = "Sonsuz bir deniz kıyısında yürüyordum"
	_, err := testDB.QueryCreateDream(ctx, input)
	require.NoError(t, err)

	_, err = testDB.QueryCreateDream(ctx, testDreamInput("Koridor"))
	require.NoError(t, err)

	found, err := testDB.QuerySearchDreams(ctx, "deniz", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Deniz", found[0].Title)
}
