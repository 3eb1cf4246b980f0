package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"quilog/internal/models"
	"quilog/internal/repository"
	"quilog/internal/service"

	"github.com/spf13/cobra"
)

func newFeedCommand(opts *RootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List posts newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *repository.Store) error {
				posts, err := service.NewPostService(store, service.PostServiceConfig{}).
					Feed(ctx, service.FeedInput{UserID: userID})
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(posts, func(w io.Writer) error {
					return writePostRows(w, posts)
				})
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "only posts by this user id")
	return cmd
}

func newPostCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "post <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *repository.Store) error {
				post, err := service.NewPostService(store, service.PostServiceConfig{}).GetPost(ctx, args[0])
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(post, func(w io.Writer) error {
					return writePost(w, post)
				})
			})
		},
	}
}

func newEngagementCommand(opts *RootOptions) *cobra.Command {
	var fanout int
	cmd := &cobra.Command{
		Use:   "engagement <id>",
		Short: "Show a post with its likers and comments resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *repository.Store) error {
				view, err := service.NewPostService(store, service.PostServiceConfig{Fanout: fanout}).
					Engagement(ctx, args[0])
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(view, func(w io.Writer) error {
					return writeEngagement(w, view)
				})
			})
		},
	}
	cmd.Flags().IntVar(&fanout, "fanout", 0, "concurrent lookups per aggregation (0 uses the default)")
	return cmd
}

type likeResult struct {
	PostID    string   `json:"postId"`
	UserID    string   `json:"userId"`
	Liked     bool     `json:"liked"`
	LikeCount int      `json:"likeCount"`
	Likes     []string `json:"likes"`
}

func newLikeCommand(opts *RootOptions) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "like <post>",
		Short: "Toggle a user's like on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *repository.Store) error {
				post, err := service.NewPostService(store, service.PostServiceConfig{}).
					ToggleLike(ctx, service.ToggleLikeInput{PostID: args[0], UserID: as})
				if err != nil {
					return err
				}
				res := likeResult{
					PostID:    post.ID,
					UserID:    as,
					Liked:     post.LikedBy(as),
					LikeCount: len(post.Likes),
					Likes:     post.Likes,
				}
				return opts.printer(cmd).Print(res, func(w io.Writer) error {
					verb := "unliked"
					if res.Liked {
						verb = "liked"
					}
					_, err := fmt.Fprintf(w, "%s %s %s (%d likes)\n", as, verb, res.PostID, res.LikeCount)
					return err
				})
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "user id to act as")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newCommentCommand(opts *RootOptions) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "comment <post> <text>...",
		Short: "Append a comment to a post as a user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return opts.withStore(cmd, func(ctx context.Context, store *repository.Store) error {
				view, err := service.NewPostService(store, service.PostServiceConfig{}).
					AddComment(ctx, service.AddCommentInput{PostID: args[0], UserID: as, Text: text})
				if err != nil {
					return err
				}
				if view == nil {
					return fmt.Errorf("comment text is blank")
				}
				return opts.printer(cmd).Print(view, func(w io.Writer) error {
					return writeEngagement(w, view)
				})
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "user id to act as")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

// OrphanReport lists comment documents no post references.
type OrphanReport struct {
	Scanned  int               `json:"scanned"`
	Orphans  []*models.Comment `json:"orphans"`
	Dangling []DanglingRef     `json:"dangling"`
}

// DanglingRef is a post's comment id with no comment document behind it.
type DanglingRef struct {
	PostID    string `json:"postId"`
	CommentID string `json:"commentId"`
}

func newOrphansCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "Report comments not referenced by any post",
		Long: `Scans every post and comment and reports comment documents that no
post references, plus post references whose comment is missing. Nothing
is modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, store *repository.Store) error {
				report, err := findOrphans(ctx, store)
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(report, func(w io.Writer) error {
					if _, err := fmt.Fprintf(w, "scanned %d comments: %d orphaned, %d dangling\n",
						report.Scanned, len(report.Orphans), len(report.Dangling)); err != nil {
						return err
					}
					for _, c := range report.Orphans {
						if _, err := fmt.Fprintf(w, "orphan\t%s\t%s\t%s\n", c.ID, c.UserID, stamp(c.CreatedAt)); err != nil {
							return err
						}
					}
					for _, d := range report.Dangling {
						if _, err := fmt.Fprintf(w, "dangling\t%s\t%s\n", d.PostID, d.CommentID); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
}

func findOrphans(ctx context.Context, store *repository.Store) (*OrphanReport, error) {
	posts, err := store.Posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	comments, err := store.Comments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	exists := make(map[string]bool, len(comments))
	for _, c := range comments {
		exists[c.ID] = true
	}
	report := &OrphanReport{
		Scanned:  len(comments),
		Orphans:  []*models.Comment{},
		Dangling: []DanglingRef{},
	}
	referenced := map[string]bool{}
	for _, p := range posts {
		for _, id := range p.Comments {
			referenced[id] = true
			if !exists[id] {
				report.Dangling = append(report.Dangling, DanglingRef{PostID: p.ID, CommentID: id})
			}
		}
	}
	for _, c := range comments {
		if !referenced[c.ID] {
			report.Orphans = append(report.Orphans, c)
		}
	}
	sort.SliceStable(report.Orphans, func(i, j int) bool {
		if report.Orphans[i].CreatedAt.Equal(report.Orphans[j].CreatedAt) {
			return report.Orphans[i].ID < report.Orphans[j].ID
		}
		return report.Orphans[i].CreatedAt.Before(report.Orphans[j].CreatedAt)
	})
	return report, nil
}
