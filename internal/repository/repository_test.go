package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/techplan/admin-server-go/internal/database"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Connect(url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	_, err = db.ExecContext(ctx, `TRUNCATE product_images, products, admins CASCADE`)
	require.NoError(t, err)

	return db
}
