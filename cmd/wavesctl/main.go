// Command wavesctl is a minimal reference client for wavesd: it sends
// one request built from its flags and prints the broadcast line the
// daemon sends back.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/llehouerou/waves/internal/wire"
)

func main() {
	socket := flag.String("socket", "/tmp/wavesd.sock", "path to the daemon's Unix socket")
	route := flag.String("route", string(wire.RoutePlayerState), "wire route to send")
	path := flag.String("path", "", "path argument, for play/append/open routes")
	index := flag.Int("index", 0, "index argument, for playlist routes")
	amount := flag.Int64("amount", 0, "amount argument, for volume/seek routes")
	flag.Parse()

	conn, err := net.Dial("unix", *socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}
	defer conn.Close()

	req := wire.Request{
		Tag:    wire.Route(*route),
		Path:   *path,
		Index:  *index,
		Amount: *amount,
	}
	data, err := json.Marshal(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(conn)
	if scanner.Scan() {
		fmt.Println(scanner.Text())
	}
}
