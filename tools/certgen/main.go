// Package main generates a development Certificate Authority (CA) and a
// server certificate, writing them under the "certs" directory. Point the
// server at certs/server.crt and certs/server.key with TLS_CERT_FILE and
// TLS_KEY_FILE, and the client at certs/ca.crt with -ca.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atinyakov/TaskKeeper/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var hostList []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hostList = append(hostList, h)
		}
	}

	if err := certgen.WriteDevBundle(*dir, hostList); err != nil {
		return err
	}
	fmt.Fprintf(out, "Certificates generated into %s\n", *dir)
	return nil
}
