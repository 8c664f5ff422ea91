package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/simp-lee/catalog/internal/client"
)

const usage = `usage: catalog [-url URL] <command> [flags]

commands:
  list     print one page of products
  create   create a product
  delete   delete a product by id
  browse   interactive pager (n, p, page N, sort FIELD, search TERM, delete ID, q)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "catalog:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	global := flag.NewFlagSet("catalog", flag.ContinueOnError)
	global.SetOutput(out)
	baseURL := global.String("url", envOr("CATALOG_URL", "http://localhost:5000"), "catalog API base URL")
	global.Usage = func() { fmt.Fprint(out, usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	c, err := client.New(*baseURL)
	if err != nil {
		return err
	}
	b := client.NewBrowser(c)

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "list":
		return runList(ctx, b, rest, out)
	case "create":
		return runCreate(ctx, b, rest, out)
	case "delete":
		return runDelete(ctx, b, rest, out)
	case "browse":
		return runBrowse(ctx, b, in, out)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runList(ctx context.Context, b *client.Browser, args []string, out io.Writer) error {
	f := client.DefaultFilters()
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.IntVar(&f.Page, "page", f.Page, "page number")
	fs.IntVar(&f.Limit, "limit", f.Limit, "products per page")
	fs.StringVar(&f.Sort, "sort", f.Sort, "sort field: name, price or createdAt")
	fs.StringVar(&f.Order, "order", f.Order, "sort order: asc or desc")
	fs.StringVar(&f.Search, "search", f.Search, "case-insensitive name/description filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := b.SetFilters(ctx, f); err != nil {
		return err
	}
	return client.RenderTable(out, b.Result(), b.Filters())
}

func runCreate(ctx context.Context, b *client.Browser, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("name", "", "product name (required)")
	description := fs.String("description", "", "product description")
	price := fs.String("price", "", "price, e.g. 19.99 (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *price == "" {
		return errors.New("create: -price is required")
	}
	p, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("create: invalid price %q: %w", *price, err)
	}

	created, err := b.Create(ctx, client.CreateProductInput{Name: *name, Description: *description, Price: p})
	if err != nil && created == nil {
		return err
	}
	fmt.Fprintf(out, "created product %d: %s ($%s)\n", created.ID, created.Name, created.Price.StringFixed(2))
	return err
}

func runDelete(ctx context.Context, b *client.Browser, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("delete: exactly one product id is required")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := b.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted product %d\n", id)
	return nil
}

// runBrowse reads one command per line and re-renders after each.
// API errors are printed and do not end the session.
func runBrowse(ctx context.Context, b *client.Browser, in io.Reader, out io.Writer) error {
	if err := b.Refresh(ctx); err != nil {
		fmt.Fprintln(out, "error:", err)
	}
	render := func() {
		_ = client.RenderTable(out, b.Result(), b.Filters())
		if err := b.Err(); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		fmt.Fprint(out, "> ")
	}
	render()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		cmd, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		arg = strings.TrimSpace(arg)

		var err error
		switch cmd {
		case "":
			err = b.Refresh(ctx)
		case "q", "quit", "exit":
			return nil
		case "n", "next":
			if b.Filters().Page < b.Result().TotalPages {
				err = b.SetPage(ctx, b.Filters().Page+1)
			}
		case "p", "prev":
			if b.Filters().Page > 1 {
				err = b.SetPage(ctx, b.Filters().Page-1)
			}
		case "page":
			var n int
			if n, err = strconv.Atoi(arg); err == nil {
				err = b.SetPage(ctx, n)
			}
		case "sort":
			err = b.SortBy(ctx, arg)
		case "search":
			err = b.Search(ctx, arg)
		case "delete":
			var id uint
			if id, err = parseID(arg); err == nil {
				err = b.Delete(ctx, id)
			}
		default:
			err = fmt.Errorf("unknown command %q", cmd)
		}
		if err != nil && b.Err() == nil {
			fmt.Fprintln(out, "error:", err)
		}
		render()
	}
	return sc.Err()
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return uint(id), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
