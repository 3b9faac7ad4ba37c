// Command urlcheck assesses URLs given as arguments, or one per line on
// stdin, and exits with status 1 when any of them is unsafe.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/veil-waf/framegate/internal/server"
	"github.com/veil-waf/framegate/internal/urlrisk"
)

func main() {
	_ = godotenv.Load()

	jsonOut := flag.Bool("json", false, "print one JSON verdict per line")
	concurrency := flag.Int("c", defaultConcurrency(), "number of URLs assessed concurrently")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "usage: urlcheck [-json] [-c N] [url...]\n")
		flag.PrintDefaults()
		fmt.Fprintf(out, "\nenvironment (also read from ./.env):\n")
		fmt.Fprintf(out, "  BATCH_CONCURRENCY  default for -c (8)\n")
		fmt.Fprintf(out, "  LOG_LEVEL          debug, info, warn or error; logs go to stderr\n")
	}
	flag.Parse()

	// Logs go to stderr so stdout carries only verdicts.
	logger := server.NewLogger(os.Stderr, os.Getenv("LOG_LEVEL"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	urls := flag.Args()
	if len(urls) == 0 {
		var err error
		if urls, err = readURLs(os.Stdin); err != nil {
			logger.Error("reading stdin failed", "err", err)
			os.Exit(2)
		}
	}

	verdicts, err := urlrisk.AssessAll(ctx, urls, *concurrency)
	if err != nil {
		logger.Error("assessment interrupted", "err", err)
		os.Exit(2)
	}

	unsafe, err := report(os.Stdout, urls, verdicts, *jsonOut)
	if err != nil {
		logger.Error("writing output failed", "err", err)
		os.Exit(2)
	}
	if unsafe {
		os.Exit(1)
	}
}

// defaultConcurrency is BATCH_CONCURRENCY when it is a positive integer,
// otherwise 8.
func defaultConcurrency() int {
	if n, err := strconv.Atoi(os.Getenv("BATCH_CONCURRENCY")); err == nil && n > 0 {
		return n
	}
	return 8
}

func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	return urls, sc.Err()
}

// report writes one line per verdict and reports whether any was unsafe.
func report(w io.Writer, urls []string, verdicts []urlrisk.Verdict, asJSON bool) (bool, error) {
	unsafe := false
	enc := json.NewEncoder(w)
	for i, v := range verdicts {
		if !v.Safe {
			unsafe = true
		}
		var err error
		if asJSON {
			err = enc.Encode(struct {
				URL string `json:"url"`
				urlrisk.Verdict
			}{urls[i], v})
		} else {
			status := "SAFE"
			if !v.Safe {
				status = "UNSAFE"
			}
			_, err = fmt.Fprintf(w, "%-6s %3d%% %-6s %s  %s\n", status, v.Confidence, v.Tier, urls[i], v.Reason)
		}
		if err != nil {
			return unsafe, err
		}
	}
	return unsafe, nil
}
