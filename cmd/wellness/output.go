package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/internal/models"
	"github.com/noah-isme/wellness-client/internal/query"
	"github.com/noah-isme/wellness-client/internal/table"
	"github.com/noah-isme/wellness-client/pkg/export"
	"github.com/noah-isme/wellness-client/pkg/storage"
)

// listOptions are the flags shared by every list command.
type listOptions struct {
	search  string
	sort    []string
	format  string
	out     string
	filters map[string]string
}

func (o *listOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.search, "search", "", "keep rows containing this text")
	f.StringArrayVar(&o.sort, "sort", nil, "sort by column; repeat a column to reverse it")
	f.StringVar(&o.format, "format", string(export.FormatText), "output format: table, csv or pdf")
	f.StringVarP(&o.out, "out", "o", "", `output file; "-" writes to stdout`)
	f.StringToStringVar(&o.filters, "filter", nil, "server-side filter, e.g. --filter grade=10,status=open")
}

func (o *listOptions) decode(out interface{}) error {
	if len(o.filters) == 0 {
		return nil
	}
	return models.DecodeFilter(o.filters, out)
}

// listCmd builds a list command reading through the query cache.
func listCmd[T any, F models.Filter](c *cli, use, short, title string, columns []table.Column[T], list func(context.Context, *app.App, F) query.State[[]T]) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter F
			if err := opts.decode(&filter); err != nil {
				return err
			}
			return renderList(cmd, c, title, opts, columns, list(cmd.Context(), c.session, filter))
		},
	}
	opts.bind(cmd)
	return cmd
}

// showCmd builds a command printing one record.
func showCmd[T any](c *cli, short string, get func(context.Context, *app.App, string) query.State[*T]) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := get(cmd.Context(), c.session, args[0]).Result()
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("no record for id %q", args[0])
			}
			return renderRecord(cmd.OutOrStdout(), record)
		},
	}
}

func renderList[T any](cmd *cobra.Command, c *cli, title string, opts *listOptions, columns []table.Column[T], st query.State[[]T]) error {
	rows, err := st.Result()
	if err != nil {
		return err
	}
	tbl := table.New(columns, rows)
	tbl.SetSearch(opts.search)
	for _, key := range opts.sort {
		if !hasColumn(columns, key) {
			return fmt.Errorf("unknown sort column %q", key)
		}
		tbl.Toggle(key)
	}
	return writeDataset(cmd, c, opts.format, opts.out, tbl.Dataset(title))
}

func hasColumn[T any](columns []table.Column[T], key string) bool {
	for _, col := range columns {
		if col.Key == key {
			return true
		}
	}
	return false
}

// writeDataset prints tables to stdout. Files go to --out, or to the
// export directory when no destination is given.
func writeDataset(cmd *cobra.Command, c *cli, format, out string, data export.Dataset) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	if out == "-" || (out == "" && f == export.FormatText) {
		return export.Write(cmd.OutOrStdout(), f, data)
	}

	var (
		file *os.File
		path string
	)
	if out == "" {
		exports, err := c.session.Exports()
		if err != nil {
			return err
		}
		file, path, err = exports.Create(storage.Filename(data.Title, f.Extension(), time.Now()))
		if err != nil {
			return err
		}
	} else {
		path = out
		if file, err = os.Create(out); err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
	}

	if err := export.Write(file, f, data); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

// renderRecord prints the flattened fields of one record, sorted by name.
// Nested lists are left to the caller.
func renderRecord(w io.Writer, record interface{}) error {
	fields := table.Fields(record)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := export.Dataset{Headers: []string{"Field", "Value"}}
	for _, k := range keys {
		if reflect.ValueOf(fields[k]).Kind() == reflect.Slice {
			continue
		}
		if text := table.Text(fields[k]); text != "" {
			data.Rows = append(data.Rows, []string{k, text})
		}
	}
	return export.Write(w, export.FormatText, data)
}
