// cmd/cli probes one or more servers once and prints the results.
//
// Usage: cli [-json] [-timeout 5000] host[:port] [host[:port] ...]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/YeeNg2333/mcstatquery/internal/domain"
	"github.com/YeeNg2333/mcstatquery/internal/probe"
)

const defaultPort = 25565

func main() {
	jsonOut := flag.Bool("json", false, "print raw JSON results")
	timeoutMS := flag.Int("timeout", 5000, "per-probe timeout in milliseconds")
	graceMS := flag.Int("grace", 1000, "extra read budget in milliseconds")
	srvServer := flag.String("srv", "", "DNS server for SRV lookups (host[:port]); empty disables")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: cli [-json] [-timeout ms] host[:port] ...")
		os.Exit(2)
	}

	targets := make([]domain.Target, 0, flag.NArg())
	for _, arg := range flag.Args() {
		host, port := splitTarget(arg)
		targets = append(targets, domain.Target{
			ID:      domain.TargetID(arg),
			Name:    arg,
			Address: host,
			Port:    port,
		})
	}

	p := probe.NewStatusPinger(
		time.Duration(*timeoutMS)*time.Millisecond,
		time.Duration(*graceMS)*time.Millisecond,
		nil,
	)
	p.Resolver = probe.NewSRVResolver(*srvServer)

	results := make([]domain.ProbeResult, len(targets))
	var wg sync.WaitGroup
	for i, t := range targets {
		i, t := i, t
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = p.Probe(context.Background(), t)
		}()
	}
	wg.Wait()

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(results)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVER\tSTATE\tPLAYERS\tVERSION\tPING\tLATENCY")
	exit := 0
	for _, r := range results {
		state := "online"
		if !r.Online {
			state = "offline (" + deref(r.Error, "?") + ")"
			exit = 1
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			r.Name, state, r.PlayersOnline, r.PlayersMax,
			deref(r.Version, "-"), ms(r.PingMS), ms(r.LatencyMS),
		)
	}
	_ = w.Flush()
	os.Exit(exit)
}

func splitTarget(arg string) (string, uint16) {
	host, portStr, err := net.SplitHostPort(arg)
	if err != nil {
		return arg, defaultPort
	}
	n, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || n == 0 {
		return arg, defaultPort
	}
	return host, uint16(n)
}

func deref(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func ms(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%dms", *v)
}
