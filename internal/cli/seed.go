package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/inkwell/internal/app"
	"github.com/inkwell/internal/logging"
	"github.com/inkwell/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedCategories = []string{"Engineering", "Design", "Product", "Culture", "Tutorials"}
	seedVideos     = []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/aqz-KE-bpKQ",
		"https://vimeo.com/76979871",
		"https://www.bilibili.com/video/BV1x5411c7mD",
	}
)

// SeedReport counts what Seed created.
type SeedReport struct {
	Posts     int
	Published int
	Ratings   int
	Comments  int
	Views     int
}

// Seeder fills a database with fake but valid content through the services,
// so every projection ends up consistent.
type Seeder struct {
	Posts    *service.PostService
	Ratings  *service.RatingService
	Comments *service.CommentService
	Views    *service.ViewService
	Faker    *gofakeit.Faker
	Logger   *zap.Logger
}

func newSeedCommand() *cobra.Command {
	var posts int
	var seed int64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate fake posts with ratings, comments and views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if posts <= 0 {
				return fmt.Errorf("--posts must be positive, got %d", posts)
			}
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer logging.Sync()

			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			s := &Seeder{
				Posts:    a.Posts,
				Ratings:  a.Ratings,
				Comments: a.Comments,
				Views:    a.Views,
				Faker:    gofakeit.New(seed),
				Logger:   logging.Component("seed"),
			}
			report, err := s.Seed(cmd.Context(), posts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d posts (%d published), %d ratings, %d comments, %d views\n",
				report.Posts, report.Published, report.Ratings, report.Comments, report.Views)
			return nil
		},
	}
	cmd.Flags().IntVar(&posts, "posts", 20, "number of posts to create")
	cmd.Flags().Int64Var(&seed, "seed", 0, "faker seed; 0 picks a random one")
	return cmd
}

// Seed creates n posts. Roughly three quarters are published and only
// published posts receive engagement.
func (s *Seeder) Seed(ctx context.Context, n int) (SeedReport, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	f := s.Faker
	var report SeedReport
	now := time.Now()

	for i := 0; i < n; i++ {
		publishedAt := f.DateRange(now.AddDate(-1, 0, 0), now)
		draft := service.PostDraft{
			Title:       strings.TrimSuffix(f.Sentence(f.Number(3, 8)), "."),
			Excerpt:     f.Sentence(f.Number(12, 24)),
			Content:     f.Paragraph(f.Number(2, 5), 4, 12, "\n\n"),
			AuthorName:  f.Name(),
			Category:    f.RandomString(seedCategories),
			Tags:        []string{f.Word(), f.Word(), f.Word()},
			ImageURL:    f.ImageURL(1200, 630),
			PublishedAt: &publishedAt,
		}
		if f.Number(1, 5) == 1 {
			draft.VideoURL = f.RandomString(seedVideos)
		}

		post, err := s.Posts.Create(ctx, draft)
		if err != nil {
			return report, fmt.Errorf("create post %d/%d: %w", i+1, n, err)
		}
		report.Posts++

		if f.Number(1, 4) == 1 {
			continue
		}
		if _, err := s.Posts.SetPublished(ctx, post.Slug, true); err != nil {
			return report, fmt.Errorf("publish %s: %w", post.Slug, err)
		}
		report.Published++
		if f.Number(1, 6) == 1 {
			if _, err := s.Posts.SetFeatured(ctx, post.Slug, true); err != nil {
				return report, fmt.Errorf("feature %s: %w", post.Slug, err)
			}
		}

		for r := f.Number(0, 6); r > 0; r-- {
			if _, err := s.Ratings.Submit(ctx, post.ID, f.UUID(), f.Number(1, 5)); err != nil {
				return report, fmt.Errorf("rate %s: %w", post.Slug, err)
			}
			report.Ratings++
		}

		var roots []uint
		for c := f.Number(0, 4); c > 0; c-- {
			input := service.CommentInput{
				PostID:      post.ID,
				AuthorName:  f.Name(),
				AuthorEmail: f.Email(),
				Content:     f.Sentence(f.Number(6, 20)),
			}
			if len(roots) > 0 && f.Bool() {
				parent := roots[f.Number(0, len(roots)-1)]
				input.ParentID = &parent
			}
			comment, err := s.Comments.Submit(ctx, input)
			if err != nil {
				return report, fmt.Errorf("comment on %s: %w", post.Slug, err)
			}
			if comment.ParentID == nil {
				roots = append(roots, comment.ID)
			}
			report.Comments++
		}

		for v := f.Number(0, 25); v > 0; v-- {
			if _, err := s.Views.Track(ctx, post.ID, f.UUID()); err != nil {
				return report, fmt.Errorf("view %s: %w", post.Slug, err)
			}
			report.Views++
		}
	}

	logger.Info("seed finished",
		zap.Int("posts", report.Posts),
		zap.Int("published", report.Published),
		zap.Int("ratings", report.Ratings),
		zap.Int("comments", report.Comments),
		zap.Int("views", report.Views))
	return report, nil
}
