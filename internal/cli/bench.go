package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"quilog/internal/repository"
	"quilog/internal/service"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/spf13/cobra"
)

// BenchResult summarizes repeated engagement aggregations, in microseconds.
type BenchResult struct {
	PostID     string  `json:"postId"`
	Iterations int     `json:"iterations"`
	Fanout     int     `json:"fanout"`
	Likes      int     `json:"likes"`
	Comments   int     `json:"comments"`
	Errors     int     `json:"errors"`
	MinUS      int64   `json:"minUs"`
	MeanUS     float64 `json:"meanUs"`
	P50US      int64   `json:"p50Us"`
	P95US      int64   `json:"p95Us"`
	P99US      int64   `json:"p99Us"`
	MaxUS      int64   `json:"maxUs"`
}

func newBenchCommand(opts *RootOptions) *cobra.Command {
	var (
		n      int
		fanout int
	)
	cmd := &cobra.Command{
		Use:   "bench <post>",
		Short: "Time engagement aggregation for a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("-n must be positive")
			}
			return opts.withStore(cmd, func(ctx context.Context, store *repository.Store) error {
				res, err := runBench(ctx, store, args[0], n, fanout)
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(res, func(w io.Writer) error {
					_, err := fmt.Fprintf(w,
						"post:\t%s\niterations:\t%d\nfanout:\t%d\nlikes:\t%d\ncomments:\t%d\nerrors:\t%d\nmin:\t%dµs\nmean:\t%.0fµs\np50:\t%dµs\np95:\t%dµs\np99:\t%dµs\nmax:\t%dµs\n",
						res.PostID, res.Iterations, res.Fanout, res.Likes, res.Comments, res.Errors,
						res.MinUS, res.MeanUS, res.P50US, res.P95US, res.P99US, res.MaxUS)
					return err
				})
			})
		},
	}
	cmd.Flags().IntVarP(&n, "iterations", "n", 100, "number of aggregations")
	cmd.Flags().IntVar(&fanout, "fanout", 0, "concurrent lookups per aggregation (0 uses the default)")
	return cmd
}

func runBench(ctx context.Context, store *repository.Store, postID string, n, fanout int) (*BenchResult, error) {
	svc := service.NewPostService(store, service.PostServiceConfig{Fanout: fanout})

	// fail fast on a missing post rather than timing n not-found errors
	post, err := svc.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	histogram := hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)
	res := &BenchResult{
		PostID:     post.ID,
		Iterations: n,
		Fanout:     fanout,
		Likes:      len(post.Likes),
		Comments:   len(post.Comments),
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		if _, err := svc.Engagement(ctx, postID); err != nil {
			res.Errors++
			continue
		}
		us := time.Since(start).Microseconds()
		if us < 1 {
			us = 1
		}
		_ = histogram.RecordValue(us)
	}

	if histogram.TotalCount() > 0 {
		res.MinUS = histogram.Min()
		res.MeanUS = histogram.Mean()
		res.P50US = histogram.ValueAtQuantile(50)
		res.P95US = histogram.ValueAtQuantile(95)
		res.P99US = histogram.ValueAtQuantile(99)
		res.MaxUS = histogram.Max()
	}
	return res, nil
}
