//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"ratecompass/internal/domain"
	mysqlrepo "ratecompass/internal/storage/mysql"
)

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=ratecompass",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "ratecompass")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestRepo_ConfigStore(t *testing.T) {
	repo := mysqlrepo.New(startMySQL(t))
	ctx := context.Background()

	if _, err := repo.Get(ctx, domain.KeyHost); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Set(ctx, domain.KeyHost, "ratecompass.eu"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set(ctx, domain.KeyHost, "http://localhost:8000"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, err := repo.Get(ctx, domain.KeyHost)
	if err != nil || v != "http://localhost:8000" {
		t.Fatalf("Get: %q / %v", v, err)
	}
	// empty values are stored, not treated as unset
	if err := repo.Set(ctx, domain.KeyAPIKey, ""); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if v, err := repo.Get(ctx, domain.KeyAPIKey); err != nil || v != "" {
		t.Fatalf("Get empty: %q / %v", v, err)
	}
}

func TestRepo_Submissions(t *testing.T) {
	repo := mysqlrepo.New(startMySQL(t))
	ctx := context.Background()

	code := 502
	msg := "bad gateway"
	failed := domain.Submission{
		OrderID:     1,
		OrderNumber: "REF1",
		Status:      domain.SubmissionFailed,
		HTTPStatus:  &code,
		Error:       &msg,
		Payload:     []byte(`{"order_id": 1}`),
	}
	if err := repo.RecordSubmission(ctx, failed); err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}
	if err := repo.RecordSubmission(ctx, domain.Submission{
		OrderID: 2, OrderNumber: "REF2", Status: domain.SubmissionSent, Payload: []byte(`{"order_id": 2}`),
	}); err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}

	got, err := repo.ListFailedSubmissions(ctx, 10)
	if err != nil {
		t.Fatalf("ListFailedSubmissions: %v", err)
	}
	if len(got) != 1 || got[0].OrderID != 1 || got[0].HTTPStatus == nil || *got[0].HTTPStatus != 502 {
		t.Fatalf("unexpected failed list %+v", got)
	}

	// a later success takes the order off the failed list
	if err := repo.RecordSubmission(ctx, domain.Submission{
		OrderID: 1, OrderNumber: "REF1", Status: domain.SubmissionSent, Payload: failed.Payload,
	}); err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}
	got, err = repo.ListFailedSubmissions(ctx, 10)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty failed list, got %+v / %v", got, err)
	}
}
