package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	glspserver "github.com/tliron/glsp/server"

	"github.com/artic-lang/artic-lsp/internal/compile"
	"github.com/artic-lang/artic-lsp/internal/crash"
	"github.com/artic-lang/artic-lsp/internal/lsp"
	"github.com/artic-lang/artic-lsp/internal/server"
	"github.com/artic-lang/artic-lsp/internal/workspace"
)

const version = "0.1.0"

var (
	tcpMode   bool
	tcpPort   int
	logLevel  int
	logFile   string
)

func init() {
	flag.BoolVar(&tcpMode, "tcp", false, "Run server in TCP mode (for debugging)")
	flag.IntVar(&tcpPort, "port", 8765, "TCP port to listen on (used with -tcp)")
	flag.IntVar(&logLevel, "log-level", 1, "commonlog verbosity (0=quiet, higher=more verbose)")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "artic-lsp version %s\n\n", version)
	fmt.Fprintf(os.Stderr, "Usage: artic-lsp [options]\n\n")
	fmt.Fprintf(os.Stderr, "Language Server Protocol implementation for the artic language\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("artic-lsp version %s\n", version)
		os.Exit(0)
	}

	if logFile != "" {
		commonlog.Configure(logLevel, &logFile)
	} else {
		commonlog.Configure(logLevel, nil)
	}

	fmt.Fprintf(os.Stderr, "artic-lsp version %s starting...\n", version)
	if tcpMode {
		fmt.Fprintf(os.Stderr, "Transport: TCP (port %d)\n", tcpPort)
	} else {
		fmt.Fprintf(os.Stderr, "Transport: STDIO\n")
	}

	crash.Install()

	srv := server.New()
	resolver := workspace.NewResolver()
	orchestrator := compile.New(resolver)

	lsp.SetServer(srv)
	lsp.SetWorkspace(resolver, orchestrator)

	glspServer := glspserver.NewServer(lsp.NewHandler(), "artic-lsp", false)

	if tcpMode {
		fmt.Fprintf(os.Stderr, "Starting TCP server on port %d...\n", tcpPort)
		if err := glspServer.RunTCP(fmt.Sprintf("127.0.0.1:%d", tcpPort)); err != nil {
			log.Fatalf("TCP server error: %v", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Starting STDIO server...\n")
		if err := glspServer.RunStdio(); err != nil {
			log.Fatalf("STDIO server error: %v", err)
		}
	}
}
