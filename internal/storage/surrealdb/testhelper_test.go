package surrealdb

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	surreal "github.com/surrealdb/surrealdb.go"

	"github.com/VikhyatChoppa18/PersonFinAdvisor/internal/common"
	tcommon "github.com/VikhyatChoppa18/PersonFinAdvisor/tests/common"
)

// testDB starts the shared SurrealDB container and returns a connected *surreal.DB
// using a unique database name per test to ensure isolation.
// Container tests only run when ADVISOR_TEST_SURREALDB=true.
func testDB(t *testing.T) *surreal.DB {
	t.Helper()

	if os.Getenv("ADVISOR_TEST_SURREALDB") != "true" {
		t.Skip("set ADVISOR_TEST_SURREALDB=true to run SurrealDB container tests")
	}

	sc := tcommon.StartSurrealDB(t)
	ctx := context.Background()

	db, err := surreal.New(sc.Address())
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": "root",
		"pass": "root",
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	// Subtest names contain "/" which SurrealDB rejects in database names
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbName := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
	if err := db.Use(ctx, "advisor_test", dbName); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})

	return db
}

// testStore returns a Store on a fresh database
func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreWithDB(context.Background(), testDB(t), testLogger())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return s
}

// testLogger returns a silent logger for tests.
func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
