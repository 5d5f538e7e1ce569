package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/sprintrstudio/openCap/src/region"
)

const (
	residentHost  = "127.0.0.1"
	pingRequest   = "PING\n"
	pongResponse  = "PONG\n"
	captureVerb   = "CAPTURE"
	successStatus = "SUCCESS\n"
	errorStatus   = "ERROR\n"
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	lis      net.Listener
	incoming chan *tcpConn
	done     chan struct{}
	once     sync.Once
	port     int
}

func newTcpServer() Server {
	return &tcpServer{incoming: make(chan *tcpConn, 8), done: make(chan struct{})}
}

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	start, _ := PortRange()
	addr := residentAddr(start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("singleinstance: listening on %s", addr)
	go s.acceptLoop(ctx)
	return nil
}

func (s *tcpServer) Port() int { return s.port }

func (s *tcpServer) acceptLoop(ctx context.Context) {
	for {
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		// A client that never sends its request line must not hold up the next one.
		go s.serve(ctx, c)
	}
}

func (s *tcpServer) serve(ctx context.Context, c net.Conn) {
	tc, ok := s.handshake(c)
	if !ok {
		return
	}
	select {
	case s.incoming <- tc:
	case <-ctx.Done():
		_ = c.Close()
	case <-s.done:
		_ = c.Close()
	}
}

// handshake reads the request line. PING and malformed requests are
// answered here; only a valid capture request is handed to Next.
func (s *tcpServer) handshake(c net.Conn) (*tcpConn, bool) {
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)
	line, _ := br.ReadString('\n')
	if line == pingRequest {
		log.Printf("singleinstance: PING from %s -> PONG", remote)
		_, _ = bw.WriteString(pongResponse)
		_ = bw.Flush()
		_ = c.Close()
		return nil, false
	}

	tc := &tcpConn{c: c, w: bw}
	req, err := parseRequest(line)
	if err != nil {
		log.Printf("singleinstance: bad request from %s: %v", remote, err)
		_ = tc.RespondError(err.Error())
		_ = c.Close()
		return nil, false
	}
	_ = c.SetDeadline(time.Time{})
	log.Printf("singleinstance: request from %s selection=%s", remote, req.Selection)
	tc.r = req
	return tc, true
}

func parseRequest(line string) (Request, error) {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	if verb != captureVerb {
		return Request{}, fmt.Errorf("unknown request %q", strings.TrimSpace(line))
	}
	if strings.TrimSpace(arg) == "" {
		return Request{Selection: region.Full()}, nil
	}
	sel, err := region.ParseSelection(arg)
	if err != nil {
		return Request{}, err
	}
	return Request{Selection: sel}, nil
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, net.ErrClosed
	case tc := <-s.incoming:
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.lis != nil {
			_ = s.lis.Close()
		}
	})
	return nil
}

type tcpConn struct {
	c net.Conn
	r Request
	w *bufio.Writer
}

func (tc *tcpConn) Request() Request { return tc.r }

func (tc *tcpConn) RespondSuccess(path string) error {
	if _, err := tc.w.WriteString(successStatus + path); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondError(msg string) error {
	if _, err := tc.w.WriteString(errorStatus + msg); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
