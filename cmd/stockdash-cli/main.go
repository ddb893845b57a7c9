package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stockdash/pkg/stockdash"
)

const version = "0.1.0"

func main() {
	addr := "http://localhost:8090"
	if a := os.Getenv("STOCKDASH_SERVER"); a != "" {
		addr = a
	}
	flag.StringVar(&addr, "server", addr, "bridge server URL")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stockdash-cli [-server URL] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version         Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  view            Print the current dashboard state\n")
		fmt.Fprintf(os.Stderr, "  select TICKER   Switch the dashboard to TICKER\n")
		fmt.Fprintf(os.Stderr, "  refresh         Re-query the current ticker\n")
		fmt.Fprintf(os.Stderr, "  tickers         List popular tickers\n")
		fmt.Fprintf(os.Stderr, "  watch           Stream state changes as JSON lines\n")
		fmt.Fprintf(os.Stderr, "\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := stockdash.NewClient(addr)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	var err error
	switch flag.Arg(0) {
	case "version":
		fmt.Printf("stockdash-cli %s\n", version)

	case "view":
		var v *stockdash.ViewJSON
		if v, err = c.View(ctx); err == nil {
			err = enc.Encode(v)
		}

	case "select":
		if flag.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "select: missing ticker")
			os.Exit(1)
		}
		var v *stockdash.ViewJSON
		if v, err = c.Select(ctx, flag.Arg(1)); err == nil {
			fmt.Printf("selected %s (cycle %d)\n", v.Selection, v.Token)
		}

	case "refresh":
		var v *stockdash.ViewJSON
		if v, err = c.Refresh(ctx); err == nil {
			fmt.Printf("refreshing %s (cycle %d)\n", v.Selection, v.Token)
		}

	case "tickers":
		var t *stockdash.TickersJSON
		if t, err = c.Tickers(ctx); err == nil {
			for i, s := range t.Popular {
				mark := " "
				if s == t.Selection {
					mark = "*"
				}
				fmt.Printf("%s %d %s\n", mark, i+1, s)
			}
		}

	case "watch":
		line := json.NewEncoder(os.Stdout)
		err = c.Watch(ctx, func(v stockdash.ViewJSON) error {
			return line.Encode(v)
		})
		if ctx.Err() != nil {
			err = nil
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
}
