// Command compare searches a running PriceCompare server and renders the
// merged product list in the terminal. With -q it prints one page and exits;
// without it, it reads commands from stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/pricecompare/backend/config"
	"github.com/pricecompare/backend/internal/catalog"
	"github.com/pricecompare/backend/internal/domain"
	"github.com/pricecompare/backend/internal/infrastructure/upstream"
)

const usage = `commands:
  search <query>          run a new search
  sort <order>            relevance | price-low | price-high | rating
  store <name>[,<name>]   only show these stores (ebay, etsy, aliexpress)
  rating <min>            minimum rating
  free                    toggle free shipping only
  prime                   toggle prime shipping only
  category <name>         restrict to one category, empty to clear
  clear                   drop store, rating and shipping filters
  more                    show the next page
  quit`

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var (
		serverURL = flag.String("server", cfg.ServerURL, "comparison server base URL")
		query     = flag.String("q", "", "search once and exit")
		sortOrder = flag.String("sort", string(catalog.SortRelevance), "sort order")
		pageSize  = flag.Int("page-size", cfg.PageSize, "products per page")
		cacheTTL  = flag.Duration("cache-ttl", cfg.CacheTTL, "how long repeated searches are served locally")
		timeout   = flag.Duration("timeout", 15*time.Second, "request timeout")
		verbose   = flag.Bool("v", false, "log requests to stderr")
	)
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	order, err := catalog.ParseSortOrder(*sortOrder)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	requester := upstream.NewRequester("server", upstream.Options{Timeout: *timeout, MaxAttempts: 1}, logger)
	state := catalog.NewResultState(catalog.NewAPIClient(*serverURL, requester), catalog.Options{
		PageSize: *pageSize,
		CacheTTL: *cacheTTL,
		Logger:   logger,
	})
	state.SetSort(order)

	ctx := context.Background()
	if *query != "" {
		if err := state.Search(ctx, *query); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		render(os.Stdout, state.View())
		return
	}

	state.OnTransition(func(from, to catalog.State) {
		if to == catalog.StateLoading {
			fmt.Fprintln(os.Stdout, "Searching...")
		}
	})
	repl(ctx, state, os.Stdin, os.Stdout)
}

func repl(ctx context.Context, state *catalog.ResultState, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, usage)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "":
			continue
		case "quit", "exit":
			return
		case "search":
			if err := state.Search(ctx, arg); err != nil && !errors.Is(err, domain.ErrValidation) {
				fmt.Fprintln(out, err)
				continue
			}
		case "sort":
			order, err := catalog.ParseSortOrder(arg)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			state.SetSort(order)
		case "store":
			f := state.View().Filters
			f.Stores = nil
			for _, name := range strings.Split(arg, ",") {
				store, err := domain.ParseStore(name)
				if err != nil {
					fmt.Fprintf(out, "unknown store %q\n", name)
					continue
				}
				f.Stores = append(f.Stores, store)
			}
			state.SetFilters(f)
		case "rating":
			minRating, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				fmt.Fprintln(out, "rating needs a number")
				continue
			}
			f := state.View().Filters
			f.MinRating = minRating
			state.SetFilters(f)
		case "free":
			f := state.View().Filters
			f.FreeShipping = !f.FreeShipping
			state.SetFilters(f)
		case "prime":
			f := state.View().Filters
			f.PrimeShipping = !f.PrimeShipping
			state.SetFilters(f)
		case "category":
			state.SetCategory(domain.Category(arg))
		case "clear":
			state.ClearFilters()
		case "more":
			if !state.LoadMore() {
				fmt.Fprintln(out, "No more products")
				continue
			}
		default:
			fmt.Fprintln(out, usage)
			continue
		}
		render(out, state.View())
	}
}

func render(out io.Writer, v catalog.View) {
	if v.Notice != "" {
		fmt.Fprintf(out, "! %s\n", v.Notice)
	}
	if len(v.Products) == 0 {
		fmt.Fprintln(out, "No products found")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STORE\tPRODUCT\tPRICE\tWAS\tRATING\tSHIPPING\tDEAL")
	for _, p := range v.Products {
		was := ""
		if p.Discount > 0 {
			was = fmt.Sprintf("$%.2f (-%d%%)", p.OriginalPrice, p.Discount)
		}
		if p.EstimatedPricing && was != "" {
			was += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t$%.2f\t%s\t%.1f\t%s\t%s\n",
			p.Store, truncate(p.Name, 48), p.Price, was, p.Rating, p.Shipping,
			lo.Ternary(p.IsBestDeal, "best deal", ""))
	}
	tw.Flush()

	fmt.Fprintf(out, "Showing %d of %d products\n", len(v.Products), v.Total)
	if v.HasMore {
		fmt.Fprintf(out, "View More (%d remaining)\n", v.Remaining)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
