// Command tcplistener prints every request it receives, one connection at a
// time. It is handy for checking what a client really sends before pointing
// it at the server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"

	"github.com/yanshuy/vhost-server/internal/request"
	"github.com/yanshuy/vhost-server/internal/response"
	"github.com/yanshuy/vhost-server/internal/vhost"
)

func main() {
	addr := flag.String("addr", ":42069", "listen address")
	flag.Parse()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatal("error listening:", err)
	}
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Fatal("error accepting:", err)
		}
		log.Println("connection accept from", conn.RemoteAddr())
		dump(conn)
	}
}

func dump(conn net.Conn) {
	defer conn.Close()

	reader := request.NewReader(conn)
	for {
		req, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Println("error reading request:", err)
			return
		}

		fmt.Println("Request line:")
		fmt.Println("- Method: " + req.Method)
		fmt.Println("- Target: " + req.Target)
		if path, ok := req.Path(); ok {
			fmt.Println("- Path: " + path)
		} else {
			fmt.Println("- Path: <invalid>")
		}
		fmt.Println("- Version: " + req.HttpVersion)

		hostHeader, _ := req.Host()
		if name, err := vhost.HostName(hostHeader); err == nil {
			fmt.Println("- Virtual host: " + name)
		} else {
			fmt.Println("- Virtual host: <none>")
		}

		fmt.Println("Headers:")
		for key := range req.Headers {
			fmt.Printf("- %s: %s\n", key, req.Headers.Value(key))
		}
		fmt.Println("Body:")
		fmt.Println(string(req.Body))

		if err := response.Write(conn, &response.Response{StatusCode: 204}); err != nil {
			log.Println("error writing response:", err)
			return
		}
		if !req.KeepAlive() {
			return
		}
	}
}
