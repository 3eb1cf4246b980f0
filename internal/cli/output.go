package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"quilog/internal/models"

	"gopkg.in/yaml.v3"
)

// Printer renders command results in the selected format. Text rendering
// is supplied per result; json and yaml marshal the value itself.
type Printer struct {
	Format string
	Writer io.Writer
}

// Print writes v, using text for the text format.
func (p *Printer) Print(v any, text func(w io.Writer) error) error {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(toYAML(v)); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(p.Writer, 0, 4, 2, ' ', 0)
		if err := text(tw); err != nil {
			return err
		}
		return tw.Flush()
	}
}

// toYAML round-trips v through JSON so yaml keys follow the json tags.
func toYAML(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func writePostRows(w io.Writer, posts []*models.Post) error {
	if _, err := fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCATEGORY\tLIKES\tCOMMENTS\tCREATED"); err != nil {
		return err
	}
	for _, p := range posts {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			p.ID, p.Title, p.UserName, p.Category, len(p.Likes), len(p.Comments), stamp(p.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func writePost(w io.Writer, p *models.Post) error {
	_, err := fmt.Fprintf(w,
		"id:\t%s\ntitle:\t%s\nauthor:\t%s\nuser:\t%s (%s)\ncategory:\t%s\ntags:\t%s\npublished:\t%s\ncreated:\t%s\nlikes:\t%d\ncomments:\t%d\n\n%s\n",
		p.ID, p.Title, p.Author, p.UserName, p.UserID, p.Category, p.Tags,
		p.PublishDate, stamp(p.CreatedAt), len(p.Likes), len(p.Comments), p.Content)
	return err
}

func writeEngagement(w io.Writer, v *models.EngagementView) error {
	names := make([]string, 0, len(v.UsersWhoLiked))
	for _, u := range v.UsersWhoLiked {
		names = append(names, u.DisplayName())
	}
	liked := "-"
	if len(names) > 0 {
		liked = strings.Join(names, ", ")
	}
	if _, err := fmt.Fprintf(w, "post:\t%s\ntitle:\t%s\nlikes:\t%d\nliked by:\t%s\ncomments:\t%d\n",
		v.Post.ID, v.Post.Title, len(v.Post.Likes), liked, len(v.Comments)); err != nil {
		return err
	}
	for _, c := range v.Comments {
		if _, err := fmt.Fprintf(w, "  %s\t%s\t%s\n", stamp(c.CreatedAt), c.AuthorName, c.Text); err != nil {
			return err
		}
	}
	return nil
}
