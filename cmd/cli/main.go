package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dd0wney/cluso-sphere/pkg/config"
	"github.com/dd0wney/cluso-sphere/pkg/console"
	"github.com/dd0wney/cluso-sphere/pkg/metrics"
	"github.com/dd0wney/cluso-sphere/pkg/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CLI struct {
	interp  *console.Interpreter
	scanner *bufio.Scanner
	out     io.Writer
	prompt  bool
}

// demoScript builds a line through two antipodal points, then pulls them apart
var demoScript = []string{
	"point 0,0,1",
	"antipode P-1",
	"line P-1 P-2",
	"list",
	"move P-1 1,0,1",
	"point 0,1,0",
	"line P-1 P-3",
	"label L-2 through the pole",
	"list",
	"undo",
	"stats",
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	loadPath := flag.String("load", "", "Snapshot to load at startup")
	scriptPath := flag.String("script", "", "Run commands from a file instead of stdin")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	opts := []session.Option{session.WithLogger(cfg.Logger(os.Stderr))}
	if *metricsAddr != "" {
		reg := metrics.DefaultRegistry()
		opts = append(opts, session.WithMetrics(reg))
		go serveMetrics(*metricsAddr, reg)
	}
	sess := session.New(cfg, opts...)

	cli := &CLI{
		interp:  console.New(sess),
		scanner: bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
		prompt:  true,
	}

	if *scriptPath != "" {
		f, err := os.Open(*scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		cli.scanner = bufio.NewScanner(f)
		cli.prompt = false
	} else {
		printBanner()
	}

	if *loadPath != "" {
		cli.execute("load " + *loadPath)
	}

	if cli.prompt {
		fmt.Println("Type 'help' for available commands, 'exit' to quit")
		fmt.Println()
	}
	if !cli.run() {
		os.Exit(1)
	}
}

func serveMetrics(addr string, reg *metrics.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "❌ metrics server: %v\n", err)
	}
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║              Cluso Sphere Interactive CLI                 ║
║        constructions on the unit sphere, with undo        ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
}

// run reads lines until EOF or exit. In script mode it stops at the first
// failing line and reports false.
func (cli *CLI) run() bool {
	for {
		if cli.prompt {
			fmt.Fprint(cli.out, "sphere> ")
		}
		if !cli.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(cli.scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "demo":
			cli.runDemo()
			continue
		case "clear":
			fmt.Fprint(cli.out, "\033[H\033[2J")
			continue
		}

		stop, ok := cli.execute(input)
		if stop {
			return true
		}
		if !ok && !cli.prompt {
			return false
		}
		if cli.prompt {
			fmt.Fprintln(cli.out)
		}
	}
	if err := cli.scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ read input: %v\n", err)
		return false
	}
	return true
}

// execute runs one line and prints its result. It reports whether the
// session should end and whether the line succeeded.
func (cli *CLI) execute(input string) (stop, ok bool) {
	out, err := cli.interp.Exec(input)
	switch {
	case errors.Is(err, console.ErrExit):
		if cli.interp.Session.Modified() {
			fmt.Fprintln(cli.out, "⚠️  Unsaved changes discarded")
		}
		fmt.Fprintln(cli.out, "👋 Goodbye!")
		return true, true
	case err != nil:
		fmt.Fprintf(cli.out, "❌ %v\n", err)
		return false, false
	}
	if out != "" {
		fmt.Fprintln(cli.out, out)
	}
	return false, true
}

func (cli *CLI) runDemo() {
	fmt.Fprintln(cli.out, "🎮 Degenerate line demo")
	fmt.Fprintln(cli.out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	for _, line := range demoScript {
		fmt.Fprintf(cli.out, "sphere> %s\n", line)
		if _, ok := cli.execute(line); !ok {
			return
		}
	}
}
