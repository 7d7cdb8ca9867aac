package core

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

func SetupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, req *http.Request) {
		slog.Debug("/healthcheck: ok", "from", ReadUserIP(req))
		w.Write([]byte("ok"))
	})
}

// VerifyHealthCheck probes a running server and returns a process exit code.
// An empty or unspecified host is probed on loopback.
func VerifyHealthCheck(host string, port int) int {
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	url := "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/healthcheck"
	client := http.Client{
		Timeout: 5 * time.Second,
	}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Printf("failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("failed: %s\n", resp.Status)
		return 1
	}

	fmt.Println("ok")
	return 0
}
