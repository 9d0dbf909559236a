package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/inkwell/internal/app"
	"github.com/inkwell/internal/config"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/search"
	"github.com/inkwell/internal/service"
)

// useTempDatabase points the configuration at a fresh sqlite file.
func useTempDatabase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "inkwell.db")
	t.Setenv("DATABASE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("GIN_MODE", "test")
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAdminCreateIsIdempotent(t *testing.T) {
	path := useTempDatabase(t)

	out, err := run(t, "admin", "create", "--username", "editor", "--password", "pa55word")
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if !strings.Contains(out, `admin "editor" created`) {
		t.Fatalf("unexpected output %q", out)
	}
	out, err = run(t, "admin", "create", "--username", "editor", "--password", "other")
	if err != nil {
		t.Fatalf("second admin create: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Fatalf("unexpected output %q", out)
	}

	gdb, err := db.Init(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, _ := gdb.DB()
	defer sqlDB.Close()
	if _, err := db.Authenticate(gdb, "editor", "pa55word"); err != nil {
		t.Fatalf("first password should still work: %v", err)
	}
}

func TestAdminCreateRequiresCredentials(t *testing.T) {
	useTempDatabase(t)
	if _, err := run(t, "admin", "create", "--username", "editor"); err == nil {
		t.Fatal("expected error without password")
	}
}

func TestSeedAndReconcileCommands(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "seed", "--posts", "4", "--seed", "7")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.HasPrefix(out, "seeded 4 posts") {
		t.Fatalf("unexpected seed output %q", out)
	}

	out, err = run(t, "reconcile")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if strings.TrimSpace(out) != "reconciled 0 posts" {
		t.Fatalf("seeded projections should already be consistent, got %q", out)
	}

	if _, err := run(t, "seed", "--posts", "0"); err == nil {
		t.Fatal("expected error for non-positive --posts")
	}
}

func TestSeederKeepsProjectionsConsistent(t *testing.T) {
	a, err := app.New(config.AppConfig{
		SessionSecret: "seed-test",
		GinMode:       "test",
		Site:          config.SiteConfig{Name: "Inkwell", BaseURL: "https://blog.example.com"},
		Database:      config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "seed.db")},
	}, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	ctx := context.Background()
	defer a.Close(ctx)

	s := &Seeder{
		Posts:    a.Posts,
		Ratings:  a.Ratings,
		Comments: a.Comments,
		Views:    a.Views,
		Faker:    gofakeit.New(11),
	}
	report, err := s.Seed(ctx, 12)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if report.Posts != 12 {
		t.Fatalf("expected 12 posts, got %d", report.Posts)
	}

	result, err := a.Posts.List(ctx, service.ListOptions{}, search.QueryState{Page: 1, PageSize: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Pagination.TotalPosts != report.Published {
		t.Fatalf("expected %d published posts listed, got %d", report.Published, result.Pagination.TotalPosts)
	}

	var views, comments, ratings int
	for _, post := range result.Items {
		views += int(post.ViewCount)
		comments += int(post.CommentCount)
		ratings += int(post.TotalRatings)
	}
	if views != report.Views || comments != report.Comments || ratings != report.Ratings {
		t.Fatalf("projections (%d views, %d comments, %d ratings) disagree with report %+v", views, comments, ratings, report)
	}

	changed, err := a.Reconcile(ctx)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if changed != 0 {
		t.Fatalf("expected no drift after seeding, got %d corrected", changed)
	}
}
