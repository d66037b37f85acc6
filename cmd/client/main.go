// Package main runs the TaskKeeper interactive command-line client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/atinyakov/TaskKeeper/internal/client"
)

var (
	version   string
	buildDate string
)

func main() {
	var (
		baseURL     string
		caFile      string
		sessionFile string
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for HTTPS servers")
	flag.StringVar(&sessionFile, "session", client.DefaultSessionFile, "path to the session file")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("TaskKeeper Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	httpClient, err := client.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}

	session := client.NewSession(sessionFile)
	if err := session.Load(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := client.NewAPI(httpClient, baseURL, session)
	shell := client.NewShell(api, session, client.NewPrompter(os.Stdin, os.Stdout), os.Stdout)
	if err := shell.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
