package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/app"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/crud"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/listquery"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
)

// resource erases the row type so one command tree serves every collection.
type resource interface {
	list(ctx context.Context, u listquery.Update) (any, func(io.Writer), error)
	get(ctx context.Context, id int64) (any, error)
	delete(ctx context.Context, id int64, c mutation.Confirmer) error
	readOnly() bool
}

type typed[T any] struct {
	r *crud.Resource[T]
}

func wrap[T any](r *crud.Resource[T]) resource { return typed[T]{r: r} }

func (t typed[T]) list(ctx context.Context, u listquery.Update) (any, func(io.Writer), error) {
	err := t.r.List().Apply(ctx, u)
	v := t.r.List().View()
	if err != nil && !v.Loaded {
		return nil, nil, err
	}
	text := func(w io.Writer) {
		fmt.Fprintf(w, "page %d/%d, %d total", v.Page+1, v.Pages(), v.Total)
		if v.Sort.Key != "" {
			fmt.Fprintf(w, ", sorted by %s %s", v.Sort.Key, v.Sort.Direction)
		}
		fmt.Fprintln(w)
		if v.Error != "" {
			fmt.Fprintf(w, "warning: %s (showing previous rows)\n", v.Error)
		}
		for _, row := range v.Rows {
			b, _ := json.Marshal(row)
			fmt.Fprintln(w, string(b))
		}
	}
	return v, text, nil
}

func (t typed[T]) get(ctx context.Context, id int64) (any, error) { return t.r.Get(ctx, id) }

func (t typed[T]) delete(ctx context.Context, id int64, c mutation.Confirmer) error {
	return t.r.Delete(ctx, id, c)
}

func (t typed[T]) readOnly() bool { return t.r.ReadOnly() }

type listFlags struct {
	page    int
	limit   int
	sortBy  string
	order   string
	search  string
	filters map[string]string
}

func (f *listFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number, from 1")
	cmd.Flags().IntVar(&f.limit, "limit", listquery.DefaultPageSize, "rows per page")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "sort key, dotted paths allowed (e.g. hotel.name)")
	cmd.Flags().StringVar(&f.order, "order", "asc", "asc|desc")
	cmd.Flags().StringVar(&f.search, "search", "", "free-text search")
	cmd.Flags().StringToStringVar(&f.filters, "filter", nil, "extra filters key=value")
}

func (f *listFlags) update(cmd *cobra.Command) (listquery.Update, error) {
	if f.page < 1 || f.limit < 1 {
		return listquery.Update{}, errors.New("--page and --limit must be positive")
	}
	var u listquery.Update
	if cmd.Flags().Changed("limit") {
		u.PageSize = &f.limit
	}
	if f.sortBy != "" {
		u.Sort = &listquery.SortConfig{Key: f.sortBy, Direction: listquery.ParseDirection(f.order)}
	}
	if f.search != "" {
		u.Search = &f.search
	}
	if len(f.filters) > 0 {
		u.Filters = f.filters
	}
	return u, nil
}

func resourceCmd(c *cli, name, short string, pick func(*app.App) resource) *cobra.Command {
	cmd := &cobra.Command{Use: name, Short: short}

	var lf listFlags
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + name,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := lf.update(cmd)
			if err != nil {
				return err
			}
			r := pick(c.app)
			ctx := cmd.Context()
			v, text, err := r.list(ctx, u)
			if err != nil {
				return err
			}
			// Apply resets the page on any query change, so the page goes
			// in a second step.
			if lf.page > 1 {
				page := lf.page - 1
				if v, text, err = r.list(ctx, listquery.Update{Page: &page}); err != nil {
					return err
				}
			}
			c.print(v, text)
			return nil
		},
	}
	lf.bind(listCmd)

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one of " + name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := pick(c.app).get(cmd.Context(), id)
			if err != nil {
				return err
			}
			c.print(v, nil)
			return nil
		},
	}

	cmd.AddCommand(listCmd, getCmd)

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of " + name + " (asks for confirmation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r := pick(c.app)
			if r.readOnly() {
				return fmt.Errorf("%s is read-only", name)
			}
			err = r.delete(cmd.Context(), id, c.confirmer(yes))
			if errors.Is(err, mutation.ErrNotConfirmed) {
				fmt.Fprintln(c.out, "cancelled")
				return nil
			}
			var re *mutation.RefreshError
			if err != nil && !errors.As(err, &re) {
				return err
			}
			fmt.Fprintf(c.out, "deleted %s/%d\n", strings.TrimSuffix(name, "s"), id)
			if re != nil {
				fmt.Fprintln(c.out, errorText(re))
			}
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.AddCommand(deleteCmd)
	return cmd
}
