package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/sprintrstudio/openCap/src/region"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryRunOnce(ctx context.Context, sel region.Selection) (bool, string, error) {
	timeout := dialTimeout(ctx, 2*time.Second)
	start, end := PortRange()
	for port := start; port <= end; port++ {
		addr := residentAddr(port)
		if !ping(addr, timeout) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			continue
		}
		path, err := delegate(ctx, conn, sel)
		return true, path, err
	}
	return false, "", nil
}

func delegate(ctx context.Context, conn net.Conn, sel region.Selection) (string, error) {
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(captureVerb + " " + sel.String() + "\n"); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("resident closed without a response: %w", err)
	}
	body, _ := io.ReadAll(br)
	switch status {
	case successStatus:
		return string(body), nil
	case errorStatus:
		return "", &RemoteError{Message: string(body)}
	default:
		return "", fmt.Errorf("unexpected resident response %q", strings.TrimSpace(status))
	}
}
